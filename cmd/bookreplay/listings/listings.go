package listings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/flarebyte/bookreplay/internal/config"
	"github.com/flarebyte/bookreplay/internal/listing"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewCmd returns `bookreplay listings`, which prints the classified listings
// of a chapter as JSON lines without replaying anything.
func NewCmd() *cobra.Command {
	var (
		cfgPath      string
		manifestPath string
		sanity       bool
	)
	cmd := &cobra.Command{
		Use:           "listings",
		Short:         "Classify a chapter's listings and print them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				return errors.New("missing required flag: --config")
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if manifestPath != "" {
				cfg.Listings = manifestPath
			}
			return printListings(cmd.OutOrStdout(), afero.NewOsFs(), cfg, sanity)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to chapter config file (.cue)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Listings manifest (overrides the config)")
	cmd.Flags().BoolVar(&sanity, "sanity", false, "Also verify sanity.kinds")
	return cmd
}

func printListings(w io.Writer, fs afero.Fs, cfg config.Chapter, sanity bool) error {
	m, err := listing.LoadManifest(fs, cfg.Listings)
	if err != nil {
		return err
	}
	ls, err := listing.Classifier{TestCommand: cfg.Tests.Command}.ClassifyAll(m.Listings)
	if err != nil {
		return err
	}
	if sanity && cfg.Sanity.HasKinds {
		if err := listing.CheckKinds(ls, cfg.Sanity.Kinds); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, l := range ls {
		var d describer
		if err := l.Accept(&d); err != nil {
			return fmt.Errorf("listing %d: %w", l.Position(), err)
		}
		if err := enc.Encode(d.row); err != nil {
			return err
		}
	}
	return nil
}
