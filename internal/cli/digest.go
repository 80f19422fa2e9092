package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/codedrop/internal/digest"
)

// DigestResult is the JSON payload for one file.
type DigestResult struct {
	Path      string `json:"path"`
	Digest    string `json:"digest"`
	CID       string `json:"cid"`
	Published bool   `json:"published"`
}

// NewDigestCommand creates the digest command.
func NewDigestCommand(rootOpts *RootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "digest <file>...",
		Short: "Print the content digest of files",
		Long: `Print the SHA-256 digest used for deduplication, and the same digest as
a CIDv1, for each file. With --check the history is consulted and each
file is marked as published or new.

Example:
  codedrop digest script.py
  codedrop digest --check *.py`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			results := make([]DigestResult, 0, len(args))
			for _, path := range args {
				d, err := digest.File(path)
				if err != nil {
					_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
					return WrapExitError(ExitCommandError, "failed to read file", err)
				}
				results = append(results, DigestResult{Path: path, Digest: d.String(), CID: d.CID()})
			}

			if check {
				h, _, err := loadHistory(rootOpts, cmd, formatter)
				if err != nil {
					return err
				}
				for i := range results {
					results[i].Published = h.HasDigest(results[i].Digest)
				}
			}

			if formatter.JSON() {
				return formatter.Success(results)
			}
			for _, r := range results {
				mark := ""
				if check {
					mark = okMark() + " "
					if r.Published {
						mark = skipMark() + " "
					}
				}
				fmt.Fprintf(formatter.Writer, "%s%s  %s\n", mark, r.Digest, r.Path)
				formatter.VerboseLog("  cid %s", r.CID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "mark files already present in the history")

	return cmd
}
