package main

import (
	"context"

	groups "github.com/goliatone/go-customer-groups/components/groups"
)

type importCmd struct {
	Path string `arg:"" type:"existingfile" help:"Dataset YAML file."`
	DSN  string `name:"dsn" required:"" env:"GROUPCTL_DSN" help:"Target SQL DSN (sqlite path or postgres:// URL)."`
}

func (c *importCmd) Run(rt *runtime, ctx context.Context) error {
	doc, err := groups.ReadDataset(c.Path)
	if err != nil {
		return err
	}
	report, err := groups.NewDatasetValidator().Check(doc)
	if err != nil {
		return err
	}
	for _, issue := range report.Issues {
		rt.logger.WarnContext(ctx, "imported record will be excluded from the tree",
			"id", issue.ID, "kind", string(issue.Kind))
	}

	db, dialect, err := groups.OpenDSN(c.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store := groups.NewSQLSource(db, dialect)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.ReplaceAll(ctx, doc.Groups); err != nil {
		return err
	}
	rt.logger.InfoContext(ctx, "dataset imported", "path", c.Path, "dialect", string(dialect), "groups", len(doc.Groups))
	return nil
}
