// Package redisstore stores two-factor records in Redis with go-redis/v9.
//
//	client, err := redisstore.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := redisstore.New(client, redisstore.WithKeyPrefix(cfg.KeyPrefix))
//
// Records never expire. Backup-code consumption runs in an optimistic
// WATCH/MULTI transaction on the record key.
package redisstore
