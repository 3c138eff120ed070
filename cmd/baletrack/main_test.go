package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"baletrack/frontend/scan"
	"baletrack/models"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "baletrack dev") || !strings.Contains(out, "commit: none") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestRootCmdListsSubcommands(t *testing.T) {
	cmd := newRootCmd()
	want := []string{"version", "serve", "login", "logout", "session", "lookup"}
	have := make(map[string]bool)
	for _, c := range cmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestLoginRequiresEmail(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"login"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "--email") {
		t.Fatalf("expected missing email error, got %v", err)
	}
}

func TestLookupRequiresOneArg(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"lookup"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestReadPasswordFromPipe(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("s3cret\r\nignored\n"))
	got, err := readPassword(cmd)
	if err != nil || got != "s3cret" {
		t.Fatalf("got %q, %v", got, err)
	}

	cmd.SetIn(strings.NewReader(""))
	if _, err := readPassword(cmd); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestPrintLookup(t *testing.T) {
	mass := 98.5
	farmer := models.Farmer{ID: "f1", FirstName: "Nyasha", LastName: "Banda"}
	bale := models.Bale{ID: "10", BarCode: "ZW789012", Mass: &mass, HasFault: true, FaultDescription: "mould", Grower: models.RefEmbedded(farmer.ID, farmer)}

	var buf bytes.Buffer
	if err := printLookup(&buf, "ZW789012", scan.Result{Bale: &bale, Kind: scan.MatchBarcode}); err != nil {
		t.Fatalf("printLookup: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"matched by barcode", "Nyasha Banda", "98.5 kg", "yes: mould", "Lot:      -"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := printLookup(&buf, "nope", scan.Result{}); err == nil {
		t.Fatalf("expected not found error")
	}
}
