package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/logging"
)

func (a *app) keygenCmd() *cobra.Command {
	var (
		nodes int
		op    string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a secret key",
		Long: `Generates a secret key for a cluster and operation and writes it as JSON.

The cluster comes from --config unless --nodes is given. The operation comes
from --op, falling back to the configured one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			operation, err := a.cfg.ParsedOperation()
			if op != "" {
				operation, err = nilql.ParseOperation(op)
			}
			if err != nil {
				return err
			}
			cluster := a.cluster(nodes)
			sk, err := nilql.GenerateSecretKey(cluster, operation)
			if err != nil {
				return err
			}
			a.logger.Info(ctxOf(cmd), "secret key generated",
				"operation", operation.String(),
				"nodes", cluster.NodeCount(),
				logging.Redacted("material"))

			data, err := sk.Dump()
			if err != nil {
				return err
			}
			return a.writeOutput(cmd, data)
		},
	}
	cmd.Flags().IntVar(&nodes, "nodes", 0, "number of nodes (overrides the configured cluster)")
	cmd.Flags().StringVar(&op, "op", "", "operation: store, match or sum")
	return cmd
}

func (a *app) pubkeyCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Derive the public key of a single-node sum key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sk, err := loadSecretKey(keyPath)
			if err != nil {
				return err
			}
			pk, err := nilql.DerivePublicKey(sk)
			if err != nil {
				return err
			}
			a.logger.Debug(ctxOf(cmd), "public key derived")
			data, err := pk.Dump()
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

func loadSecretKey(path string) (*nilql.SecretKey, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	return nilql.LoadSecretKey(data)
}

// loadKey accepts either a secret or a public key file.
func loadKey(path string) (nilql.Key, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	sk, skErr := nilql.LoadSecretKey(data)
	if skErr == nil {
		return sk, nil
	}
	pk, pkErr := nilql.LoadPublicKey(data)
	if pkErr == nil {
		return pk, nil
	}
	return nil, errors.Join(skErr, pkErr)
}
