package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/muurk/vininsight/internal/config"
	"github.com/muurk/vininsight/internal/presenter"
	"github.com/muurk/vininsight/internal/session"
	"github.com/muurk/vininsight/internal/tui"
	"github.com/muurk/vininsight/internal/ui"
	"github.com/muurk/vininsight/internal/urls"
	"github.com/muurk/vininsight/internal/vehicle"
	"github.com/muurk/vininsight/internal/vindecode"
)

// Command flags
var (
	outputFormat   string
	vehiclesFormat string
	assumeYes      bool
)

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(testAPICmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(vehiclesCmd)

	decodeCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format (text, json, html)")
	vehiclesCmd.Flags().StringVar(&vehiclesFormat, "format", "text", "Output format (text, yaml)")
	keyClearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keyClearCmd)
}

func newStore() (*config.FileCredentialStore, error) {
	return config.NewFileCredentialStore(settings.CredentialsFile)
}

// newProvider picks the vehicle source: a remote tree, a local file, or the
// single sample vehicle.
func newProvider() vehicle.Provider {
	switch {
	case settings.VehiclesURL != "":
		return vehicle.NewHTTPProvider(treeURL(settings.VehiclesURL))
	case settings.VehiclesFile != "":
		return &vehicle.FileProvider{Path: settings.VehiclesFile}
	default:
		return vehicle.StaticProvider{{
			ID:   "sample",
			Name: "Sample vehicle",
			VIN:  vindecode.SampleVIN,
		}}
	}
}

// treeURL appends the default tree path to a bare server address.
func treeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
		return raw
	}
	return strings.TrimRight(raw, "/") + vehicle.DefaultTreePath
}

// newSession builds a decode session. Failures come back as errors and are
// printed by the caller, so notices are not collected.
func newSession(store config.CredentialStore) (*vehicle.Selection, *session.Session) {
	sel := vehicle.NewSelection()
	sess := session.New(sel, store, vindecode.NewClient(settings.APIBase))
	return sel, sess
}

// runTUI launches the interactive interface
func runTUI(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdout) {
		return fmt.Errorf("the interactive UI needs a terminal; use a subcommand such as 'vininsight decode <vin>'")
	}

	store, err := newStore()
	if err != nil {
		return err
	}

	return tui.Run(cmd.Context(), tui.Deps{
		Provider: newProvider(),
		Store:    store,
		Decoder:  vindecode.NewClient(settings.APIBase),
	})
}

// decodeCmd decodes a single VIN
var decodeCmd = &cobra.Command{
	Use:   "decode <vin>",
	Short: "Decode a VIN",
	Long: `Decode a VIN with the saved API key and print a summary of the
top-level fields followed by the raw response.`,
	Example: `  # Decode the sample VIN
  vininsight decode 3GCUDHEL3NG668790

  # Raw JSON for scripts
  vininsight decode 3GCUDHEL3NG668790 --format json

  # HTML fragment for embedding in a report
  vininsight decode 3GCUDHEL3NG668790 --format html > decode.html`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "text", "json", "html":
	default:
		return fmt.Errorf("unknown format %q (want text, json or html)", outputFormat)
	}

	store, err := newStore()
	if err != nil {
		return err
	}

	sel, sess := newSession(store)
	defer sess.Close()

	vin := args[0]
	sel.Select(vehicle.Vehicle{ID: "cli", Name: vin, VIN: vin})

	p := ui.NewPrinter(cmd.OutOrStdout())
	if err := sess.Decode(cmd.Context()); err != nil {
		printFailure(ui.NewPrinter(cmd.ErrOrStderr()), session.TitleDecodeError, err)
		return errReported
	}

	snap := sess.Snapshot()
	switch outputFormat {
	case "json":
		var out bytes.Buffer
		if err := json.Indent(&out, snap.Payload.Raw(), "", "  "); err != nil {
			return fmt.Errorf("failed to format response: %w", err)
		}
		p.Println(out.String())
	case "html":
		p.Print(presenter.RenderHTML(snap.Payload))
	default:
		p.PrintHeader("VIN Decode", "vininsight decode", []ui.Detail{{Key: "VIN", Value: presenter.TerminalEscape(vin)}})
		p.PrintSummary(snap.Result.Rows)
		p.PrintRaw(snap.Result.Raw)
	}
	return nil
}

// printFailure explains err with the matching troubleshooting hint.
func printFailure(p *ui.Printer, title string, err error) {
	if vindecode.IsPreconditionError(err) {
		tips := []string{
			"Set it with 'vininsight key set'",
			"Create a key at " + urls.AutoDevAPIKeys,
		}
		if vindecode.ShortMessage(err) == session.MsgVINNotSpecified {
			tips = nil
		}
		p.PrintError(title, fmt.Errorf("%s", vindecode.ShortMessage(err)), tips)
		return
	}

	head, tips := ui.HintLines(vindecode.TroubleshootingHint(err))
	if len(tips) == 0 {
		tips = []string{head}
	}
	p.PrintError(title, fmt.Errorf("%s", presenter.TerminalEscape(vindecode.ShortMessage(err))), tips)
}

// testAPICmd checks the API key against the sample VIN
var testAPICmd = &cobra.Command{
	Use:   "test-api",
	Short: "Test the saved API key",
	Long: `Decode the sample VIN ` + vindecode.SampleVIN + ` to check that the saved
API key is accepted and the decode service is reachable.`,
	Args: cobra.NoArgs,
	RunE: runTestAPI,
}

func runTestAPI(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	_, sess := newSession(store)
	defer sess.Close()

	res, err := sess.TestConnection(cmd.Context())
	if err != nil {
		printFailure(ui.NewPrinter(cmd.ErrOrStderr()), session.TitleTestFailed, err)
		return errReported
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("API connection successful", []ui.Detail{
		{Key: "Sample VIN", Value: vindecode.SampleVIN},
		{Key: "Make", Value: presenter.TerminalEscape(res.Make())},
		{Key: "Model", Value: presenter.TerminalEscape(res.Model())},
	})
	return nil
}

// keyCmd groups API key management
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the saved API key",
	Long: `Manage the auto.dev API key. The key is stored in plain text in the
credentials file (default <config dir>/credentials.yaml, mode 0600).`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Save the API key",
	Long: `Save the API key. Without an argument the key is read from standard
input, without echo when it is a terminal.`,
	Example: `  vininsight key set
  echo "$AUTODEV_KEY" | vininsight key set`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value string
		if len(args) == 1 {
			value = args[0]
		} else {
			v, err := readKey(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			value = v
		}

		store, err := newStore()
		if err != nil {
			return err
		}
		if err := store.Save(value); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("API key saved", []ui.Detail{
			{Key: "Key", Value: config.MaskKey(value)},
			{Key: "File", Value: store.Path},
		})
		return nil
	},
}

// readKey reads one line from in, hiding input on a terminal.
func readKey(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no API key given on standard input")
	}
	return strings.TrimSpace(line), nil
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved API key (masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		value, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}

		out := cmd.OutOrStdout()
		if value == "" {
			ui.NewPrinter(out).PrintWarning("No API key saved", []ui.Detail{
				{Key: "Key", Value: config.MaskKey(value)},
				{Key: "File", Value: store.Path},
				{Key: "Set it with", Value: "vininsight key set"},
			})
			return nil
		}
		fmt.Fprintf(out, "API key: %s\n", config.MaskKey(value))
		fmt.Fprintf(out, "File:    %s\n", store.Path)
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}

		if !assumeYes {
			ok := ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "REMOVE API KEY",
				[]string{
					"The saved API key will be deleted from " + store.Path,
					"Decoding will fail until a new key is saved",
				}, "yes")
			if !ok {
				return nil
			}
		}

		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear API key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
		return nil
	},
}

// vehiclesCmd lists the configured vehicles
var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "List vehicles from the configured source",
	Long: `Load the vehicle list from --vehicles-url, --vehicles-file or the
built-in sample, in that order, and print it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vehicles, err := newProvider().Load(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch vehiclesFormat {
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(struct {
				Vehicles []vehicle.Vehicle `yaml:"vehicles"`
			}{vehicles}); err != nil {
				return fmt.Errorf("failed to encode vehicles: %w", err)
			}
			return enc.Close()
		case "text":
			views := make([]vehicle.View, len(vehicles))
			for i, v := range vehicles {
				views[i] = v.Normalize()
			}
			ui.NewPrinter(out).PrintVehicles(views)
			return nil
		default:
			return fmt.Errorf("unknown format %q (want text or yaml)", vehiclesFormat)
		}
	},
}
