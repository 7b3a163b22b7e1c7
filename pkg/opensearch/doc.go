// Package opensearch connects to an OpenSearch cluster. It backs the
// OpenSearch audit storage, which keeps security events searchable next to
// the rest of the platform logs.
//
//	var cfg opensearch.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	storage := audit.NewOpenSearchStorage(client, cfg.AuditIndex)
//
// Credentials are optional for clusters without the security plugin.
package opensearch
