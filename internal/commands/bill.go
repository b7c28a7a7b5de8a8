package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billsplit-dev/billsplit/internal/ledger"
	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
	"github.com/billsplit-dev/billsplit/internal/snapshot"
)

func newBillCommand(a *app) *cobra.Command {
	billCmd := &cobra.Command{
		Use:   "bill",
		Short: "Create and edit bill files",
	}
	billCmd.AddCommand(newBillNewCommand(a))
	billCmd.AddCommand(newBillRenameCommand(a))
	billCmd.AddCommand(newPersonCommand(a))
	billCmd.AddCommand(newItemCommand(a))
	billCmd.AddCommand(newBillUndoCommand(a))
	billCmd.AddCommand(newBillClearCommand(a))
	billCmd.AddCommand(newBillShowCommand(a))
	return billCmd
}

// mutate loads the bill at path, applies fn and writes the result back.
func (a *app) mutate(cmd *cobra.Command, path, out string, fn func(*ledger.Ledger) error) error {
	l, err := a.openLedger(cmd, path)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	if path == stdio && out == "" {
		out = stdio
	}
	return a.saveLedger(cmd, l, path, out)
}

// status prints a progress message unless the bill itself goes to stdout.
func status(cmd *cobra.Command, path, out string, format string, args ...any) {
	w := cmd.OutOrStdout()
	if out == stdio || (out == "" && path == stdio) {
		w = cmd.ErrOrStderr()
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func newBillNewCommand(a *app) *cobra.Command {
	var name string
	var people []string
	var force bool

	cmd := &cobra.Command{
		Use:   "new FILE",
		Short: "Create an empty bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if path != stdio && !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			if strings.TrimSpace(name) == "" {
				name = a.cfg.Bill.DefaultName
			}
			ids, err := a.ids()
			if err != nil {
				return err
			}
			l := ledger.New(model.Bill{Name: name, CreatedAt: a.now().UTC()}, ids)
			for _, p := range people {
				if _, err := l.AddParticipant(p); err != nil {
					return err
				}
			}

			if err := writeOutput(cmd, path, func(w io.Writer) error {
				return snapshot.EncodeBill(w, l.Bill())
			}); err != nil {
				return err
			}
			a.log.Debug("bill created", "path", path, "bill", l.Bill().ID)
			status(cmd, path, "", "Created %q in %s", l.Bill().Name, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "bill name (default from config)")
	cmd.Flags().StringSliceVar(&people, "people", nil, "participants to add, comma separated")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func newBillRenameCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "rename FILE NAME",
		Short: "Rename a bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], out, func(l *ledger.Ledger) error {
				if err := l.Rename(args[1]); err != nil {
					return err
				}
				status(cmd, args[0], out, "Renamed to %q", l.Bill().Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bill here instead of FILE")
	return cmd
}

func newPersonCommand(a *app) *cobra.Command {
	personCmd := &cobra.Command{
		Use:     "person",
		Aliases: []string{"people"},
		Short:   "Add or remove participants",
	}

	var out string
	add := &cobra.Command{
		Use:   "add FILE NAME...",
		Short: "Add participants",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], out, func(l *ledger.Ledger) error {
				for _, name := range args[1:] {
					p, err := l.AddParticipant(name)
					if err != nil {
						return err
					}
					status(cmd, args[0], out, "Added %s (%s)", p.Name, p.ID)
				}
				return nil
			})
		},
	}
	add.Flags().StringVarP(&out, "out", "o", "", "write the bill here instead of FILE")

	var rmOut string
	rm := &cobra.Command{
		Use:   "rm FILE PERSON",
		Short: "Remove a participant and unassign them from every item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], rmOut, func(l *ledger.Ledger) error {
				p, err := resolveParticipant(l.Participants(), args[1])
				if err != nil {
					return err
				}
				l.RemoveParticipant(p.ID)
				status(cmd, args[0], rmOut, "Removed %s (%s)", p.Name, p.ID)
				return nil
			})
		},
	}
	rm.Flags().StringVarP(&rmOut, "out", "o", "", "write the bill here instead of FILE")

	personCmd.AddCommand(add, rm)
	return personCmd
}

func newItemCommand(a *app) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Add, remove and assign items",
	}
	itemCmd.AddCommand(newItemAddCommand(a), newItemRmCommand(a), newItemAssignCommand(a))
	return itemCmd
}

func newItemAddCommand(a *app) *cobra.Command {
	var name, price, qty, out string
	var assign []string

	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := money.Parse(price)
			if err != nil {
				return fmt.Errorf("--price: %w", err)
			}
			quantity, err := money.Parse(qty)
			if err != nil {
				return fmt.Errorf("--qty: %w", err)
			}

			return a.mutate(cmd, args[0], out, func(l *ledger.Ledger) error {
				assigned, err := resolveParticipants(l.Participants(), assign)
				if err != nil {
					return err
				}
				it, err := l.AddItem(ledger.ItemParams{
					Name:       name,
					UnitPrice:  unit,
					Quantity:   quantity,
					AssignedTo: assigned,
				})
				if err != nil {
					return err
				}
				status(cmd, args[0], out, "Added %s (%s) %d x %s = %s",
					it.Name, it.ID, it.Quantity, a.amount(it.UnitPrice), a.amount(it.Price))
				if len(it.AssignedTo) == 0 {
					a.log.Warn("item is not assigned to anyone; its cost stays unallocated", "item", it.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "item name (required)")
	cmd.Flags().StringVar(&price, "price", "", "unit price (required)")
	cmd.Flags().StringVar(&qty, "qty", "1", "quantity")
	cmd.Flags().StringSliceVar(&assign, "assign", nil, "participants sharing the item (IDs or names, or \"all\")")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bill here instead of FILE")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newItemRmCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "rm FILE ITEM",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], out, func(l *ledger.Ledger) error {
				it, err := resolveItem(l.Items(), args[1])
				if err != nil {
					return err
				}
				l.RemoveItem(it.ID)
				status(cmd, args[0], out, "Removed %s (%s)", it.Name, it.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bill here instead of FILE")
	return cmd
}

func newItemAssignCommand(a *app) *cobra.Command {
	var to []string
	var out string

	cmd := &cobra.Command{
		Use:   "assign FILE ITEM",
		Short: "Replace the set of participants sharing an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], out, func(l *ledger.Ledger) error {
				it, err := resolveItem(l.Items(), args[1])
				if err != nil {
					return err
				}
				assigned, err := resolveParticipants(l.Participants(), to)
				if err != nil {
					return err
				}
				if err := l.Assign(it.ID, assigned); err != nil {
					return err
				}
				status(cmd, args[0], out, "%s is now split between %d people", it.Name, len(assigned))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "participants (IDs or names, or \"all\"); empty unassigns")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bill here instead of FILE")
	return cmd
}

func newBillUndoCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "undo FILE",
		Short: "Remove the most recently added item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], out, func(l *ledger.Ledger) error {
				it, ok := l.UndoLastItem()
				if !ok {
					return ledger.ErrNoItems
				}
				status(cmd, args[0], out, "Removed %s (%s)", it.Name, it.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bill here instead of FILE")
	return cmd
}

func newBillClearCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "clear FILE",
		Short: "Remove every item, keeping the participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], out, func(l *ledger.Ledger) error {
				n := l.ClearItems()
				status(cmd, args[0], out, "Removed %d items", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bill here instead of FILE")
	return cmd
}

func newBillShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print the items and what each participant owes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(cmd, args[0])
			if err != nil {
				return err
			}
			if err := a.renderBill(cmd.OutOrStdout(), l.Bill(), l.OwedShares()); err != nil {
				return err
			}
			if u := l.Unallocated(); u.IsPositive() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nUnallocated: %s\n", a.amount(u))
			}
			return nil
		},
	}
}
