package main

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/srg/blescan/internal/adstruct"
	"github.com/srg/blescan/pkg/config"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <payload-hex>...",
	Short: "Decode advertising payloads",
	Long: `Decode raw advertising payloads given as hex strings into AD structures.

Separators (':', '-', ' ') and a 0x prefix are accepted, so payloads can be
pasted from HCI traces or other tools. Payloads longer than 31 bytes are
decoded up to the end of the legacy advertising frame.`,
	Example: `  blescan decode 0201060303aafe
  blescan decode "02:01:06:05:09:4c:61:6d:70" --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

var (
	decodeFormat     string
	decodeStructures bool
)

func init() {
	addDecodeFlags(decodeCmd)
}

func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&decodeFormat, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().BoolVar(&decodeStructures, "structures", false, "Also list the raw AD structures (text format)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	if !slices.Contains(config.OutputFormats, decodeFormat) {
		return fmt.Errorf("invalid format '%s': must be one of %v", decodeFormat, config.OutputFormats)
	}

	payloads := make([][]byte, 0, len(args))
	for i, arg := range args {
		p, err := parsePayload(arg)
		if err != nil {
			return fmt.Errorf("invalid payload at index %d: %w", i, err)
		}
		payloads = append(payloads, p)
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	out := newReportPrinter(cmd.OutOrStdout(), decodeFormat)
	for _, p := range payloads {
		if err := out.PrintFields(p, adstruct.DecodeAll(p)); err != nil {
			return err
		}
		if decodeStructures && decodeFormat == "text" {
			for s := range adstruct.Structures(p) {
				fmt.Fprintf(cmd.OutOrStdout(), "  AD Structure Info: AD type 0x%X, AD Data Length %d\n", uint8(s.Type), len(s.Data))
			}
		}
	}
	return nil
}

// parsePayload decodes a hex payload, ignoring common byte separators.
func parsePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(":", "", "-", "", " ", "").Replace(s)
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not hex: %w", s, err)
	}
	return b, nil
}
