// Package pgstore stores two-factor records in PostgreSQL using pgx/v5.
//
// The schema ships with the package as an embedded goose migration:
//
//	cfg := pgstore.Config{}
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pgstore.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	svc, err := twofactor.New(pgstore.New(pool), "Acme")
//
// Backup codes are consumed with a single conditional UPDATE that matches
// the full current hash array, so concurrent logins never spend a code twice.
package pgstore
