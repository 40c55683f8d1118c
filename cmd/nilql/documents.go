package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/document"
)

func (a *app) allotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allot",
		Short: "Split a document with $allot markers into one document per node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := a.readInput(cmd)
			if err != nil {
				return err
			}
			doc, err := document.Parse(input)
			if err != nil {
				return err
			}
			shares, err := nilql.Allot(doc)
			if err != nil {
				return err
			}
			a.logger.Debug(ctxOf(cmd), "document allotted", "documents", len(shares))
			return a.writeDocuments(cmd, shares)
		},
	}
}

func (a *app) unifyCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "unify",
		Short: "Reassemble a document from a JSON array of per-node documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sk, err := loadSecretKey(keyPath)
			if err != nil {
				return err
			}
			input, err := a.readInput(cmd)
			if err != nil {
				return err
			}
			doc, err := document.Parse(input)
			if err != nil {
				return err
			}
			list, ok := doc.(document.List)
			if !ok {
				return fmt.Errorf("expected a JSON array of documents, got %s", document.KindOf(doc))
			}
			out, err := nilql.Unify(sk, list)
			if err != nil {
				return err
			}
			a.logger.Debug(ctxOf(cmd), "documents unified", "documents", len(list))
			data, err := document.Marshal(out)
			if err != nil {
				return err
			}
			return a.writeOutput(cmd, data)
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "secret key file")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func (a *app) writeDocuments(cmd *cobra.Command, docs []nilql.Document) error {
	values := make([]any, len(docs))
	for i, d := range docs {
		values[i] = document.ToValue(d)
	}
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return a.writeOutput(cmd, data)
}
