package main

import (
	"context"
	"database/sql"

	groups "github.com/goliatone/go-customer-groups/components/groups"
	"github.com/goliatone/go-customer-groups/pkg/groupsapi"
)

// sourceFlags selects where records come from. The first non-empty of
// dataset, DSN and API URL wins; with none set the bundled sample is used.
type sourceFlags struct {
	Dataset string `name:"dataset" short:"d" type:"path" env:"GROUPCTL_DATASET" help:"YAML dataset file."`
	DSN     string `name:"dsn" env:"GROUPCTL_DSN" help:"SQL DSN (sqlite path or postgres:// URL)."`
	APIURL  string `name:"api-url" env:"GROUPCTL_API_URL" help:"Base URL of a remote customer group API."`
	APIKey  string `name:"api-key" env:"GROUPCTL_API_KEY" help:"Bearer token for --api-url."`
}

func (f sourceFlags) open(ctx context.Context) (groups.RecordSource, func(), error) {
	noop := func() {}
	switch {
	case f.Dataset != "":
		return groups.FileSource{Path: f.Dataset, Validator: groups.NewDatasetValidator()}, noop, nil
	case f.DSN != "":
		db, dialect, err := groups.OpenDSN(f.DSN)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() { _ = db.Close() }
		if err := pingDB(ctx, db); err != nil {
			closeDB()
			return nil, noop, fail("connect %s: %w", dialect, err)
		}
		return groups.NewSQLSource(db, dialect), closeDB, nil
	case f.APIURL != "":
		client, err := groupsapi.NewHTTPClient(groupsapi.HTTPConfig{BaseURL: f.APIURL, APIKey: f.APIKey})
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	default:
		return groups.StaticSource{Records: groups.DefaultRecords()}, noop, nil
	}
}

func (f sourceFlags) describe() string {
	switch {
	case f.Dataset != "":
		return f.Dataset
	case f.DSN != "":
		return "sql"
	case f.APIURL != "":
		return f.APIURL
	default:
		return "sample"
	}
}

func pingDB(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}
