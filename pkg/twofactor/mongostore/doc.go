// Package mongostore stores two-factor records in MongoDB using the v2 driver.
//
//	client, err := mongostore.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//
//	store := mongostore.New(mongostore.Collection(client, cfg))
//
// Backup codes are consumed with an UpdateOne filtered on the full current
// hash array.
package mongostore
