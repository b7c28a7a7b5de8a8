package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/billsplit-dev/billsplit/internal/ledger"
	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/snapshot"
)

// stdio is the file argument that selects stdin or stdout.
const stdio = "-"

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == stdio {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// writeOutput renders into a buffer first so a failed encode never
// truncates an existing file.
func writeOutput(cmd *cobra.Command, path string, render func(io.Writer) error) error {
	if path == stdio {
		return render(cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readBill(cmd *cobra.Command, path string) (model.Bill, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return model.Bill{}, err
	}
	defer r.Close()

	bill, err := snapshot.DecodeBill(r)
	if err != nil {
		return model.Bill{}, fmt.Errorf("%s: %w", path, err)
	}
	return bill, nil
}

// openLedger loads the bill at path into an editing session.
func (a *app) openLedger(cmd *cobra.Command, path string) (*ledger.Ledger, error) {
	bill, err := readBill(cmd, path)
	if err != nil {
		return nil, err
	}
	ids, err := a.ids()
	if err != nil {
		return nil, err
	}
	l := ledger.New(bill, ids)
	a.log.Debug("bill loaded", "path", path, "bill", l.Bill().ID,
		"participants", len(l.Participants()), "items", len(l.Items()))
	return l, nil
}

// saveLedger writes the session back to out, or to path when out is empty.
func (a *app) saveLedger(cmd *cobra.Command, l *ledger.Ledger, path, out string) error {
	if out == "" {
		out = path
	}
	if err := writeOutput(cmd, out, func(w io.Writer) error {
		return snapshot.EncodeBill(w, l.Bill())
	}); err != nil {
		return err
	}
	a.log.Debug("bill saved", "path", out)
	return nil
}
