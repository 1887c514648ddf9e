package cmd

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/heimdall/pkg/claims"
)

func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token helpers",
	}

	cmd.AddCommand(NewTokenInspectCommand())

	return cmd
}

func NewTokenInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Decode a token payload and show the user id Heimdall would record",
		Long: `Decodes the payload segment of a JWT-shaped token without verifying its
signature. A "Bearer " prefix is accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := claims.Decode(args[0])
			out := cmd.OutOrStdout()

			if len(c) == 0 {
				fmt.Fprintln(out, "no claims could be decoded")
				return nil
			}

			keys := make([]string, 0, len(c))
			for k := range c {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			fmt.Fprintln(out, "claims:")
			for _, k := range keys {
				v, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(c[k])
				if err != nil {
					v = fmt.Sprint(c[k])
				}
				fmt.Fprintf(out, "  %s: %s\n", k, v)
			}

			if uid, ok := c.UserID(); ok {
				fmt.Fprintf(out, "user id: %s\n", uid)
			} else {
				fmt.Fprintln(out, "user id: (none)")
			}
			return nil
		},
	}
}
