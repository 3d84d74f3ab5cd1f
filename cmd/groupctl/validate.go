package main

import (
	"context"
	"fmt"

	groups "github.com/goliatone/go-customer-groups/components/groups"
)

type validateCmd struct {
	Path        string `arg:"" type:"existingfile" help:"Dataset YAML file."`
	AllowIssues bool   `name:"allow-issues" help:"Report integrity issues without failing."`
}

func (c *validateCmd) Run(rt *runtime, _ context.Context) error {
	doc, err := groups.ReadDataset(c.Path)
	if err != nil {
		return err
	}
	report, err := groups.NewDatasetValidator().Check(doc)
	if err != nil {
		return err
	}
	for _, issue := range report.Issues {
		fmt.Fprintln(rt.out, warnStyle.Render("! "+issue.Error()))
	}
	if !report.OK() && !c.AllowIssues {
		return fail("%s: %d record(s) excluded from the tree", c.Path, len(report.Issues))
	}
	fmt.Fprintf(rt.out, "✓ %s: %d groups, %d excluded\n", c.Path, len(doc.Groups), len(report.Issues))
	return nil
}
