package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/document"
)

func (a *app) encryptCmd() *cobra.Command {
	var (
		keyPath  string
		value    string
		asString bool
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a value or a JSON array of values",
		Long: `Encrypts --value under the key. Without --value, reads a JSON array of
integers and strings from the input and encrypts them concurrently, writing
an array of ciphertexts in the same order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(keyPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("value") {
				p, err := parsePlaintext(value, asString)
				if err != nil {
					return err
				}
				ct, err := nilql.Encrypt(key, p)
				if err != nil {
					return err
				}
				a.logger.Debug(ctxOf(cmd), "value encrypted", "nodes", key.NodeCount())
				data, err := json.Marshal(ct)
				if err != nil {
					return err
				}
				return a.writeOutput(cmd, data)
			}

			input, err := a.readInput(cmd)
			if err != nil {
				return err
			}
			plaintexts, err := parsePlaintexts(input)
			if err != nil {
				return err
			}
			res, err := nilql.EncryptBatch(ctxOf(cmd), &nilql.BatchEncryptParams{
				Key:        key,
				Plaintexts: plaintexts,
				Limit:      a.cfg.BatchLimit,
			})
			if err != nil {
				return err
			}
			a.logger.Info(ctxOf(cmd), "batch encrypted", "count", len(plaintexts), "nodes", key.NodeCount())
			data, err := json.Marshal(res.Ciphertexts)
			if err != nil {
				return err
			}
			return a.writeOutput(cmd, data)
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "secret or public key file")
	cmd.Flags().StringVar(&value, "value", "", "value to encrypt")
	cmd.Flags().BoolVar(&asString, "string", false, "treat --value as a string even if it parses as an integer")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func (a *app) decryptCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a JSON ciphertext read from the input",
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
			var ct nilql.Ciphertext
			if err := json.Unmarshal(input, &ct); err != nil {
				return fmt.Errorf("parse ciphertext: %w", err)
			}
			p, err := nilql.Decrypt(sk, ct)
			if err != nil {
				return err
			}
			a.logger.Debug(ctxOf(cmd), "ciphertext decrypted", "nodes", sk.NodeCount())
			var out any
			if v, ok := p.Int(); ok {
				out = v
			} else {
				out, _ = p.Str()
			}
			data, err := json.Marshal(out)
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

// parsePlaintext reads s as an integer unless asString is set or it does
// not parse as one.
func parsePlaintext(s string, asString bool) (nilql.Plaintext, error) {
	if !asString {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return nilql.Integer(v), nil
		}
	}
	return nilql.String(s), nil
}

func parsePlaintexts(input []byte) ([]nilql.Plaintext, error) {
	doc, err := document.Parse(input)
	if err != nil {
		return nil, err
	}
	list, ok := doc.(document.List)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array of values, got %s", document.KindOf(doc))
	}
	out := make([]nilql.Plaintext, len(list))
	for i, e := range list {
		switch v := e.(type) {
		case document.Int:
			out[i] = nilql.Integer(int64(v))
		case document.String:
			out[i] = nilql.String(string(v))
		default:
			return nil, fmt.Errorf("value %d: integer or string expected, got %s", i, document.KindOf(e))
		}
	}
	return out, nil
}
