package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tierledger/settle/member"
)

func newMemberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage the member hierarchy",
	}
	cmd.AddCommand(
		newMemberListCmd(a),
		newMemberTreeCmd(a),
		newMemberAddCmd(a),
		newMemberUpdateCmd(a),
		newMemberRemoveCmd(a),
	)
	return cmd
}

func newMemberListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every member with its rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			members, err := a.svc.Members(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPARENT\tNAME\tLEVEL\tCASINO\tSLOT\tLOSING")
			for _, m := range members {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%g\n",
					m.ID, m.ParentID, m.Name, m.Level, m.CasinoRate, m.SlotRate, m.LosingRate)
			}
			return w.Flush()
		},
	}
}

func newMemberTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [root-id]",
		Short: "Print the hierarchy below a root, or below every root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.svc.Members(cmd.Context())
			if err != nil {
				return err
			}
			idx := member.NewIndex(members)

			var roots []*member.Member
			if len(args) == 1 {
				m, ok := idx.Get(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", member.ErrNotFound, args[0])
				}
				roots = []*member.Member{m}
			} else {
				roots = idx.Roots()
			}

			out := cmd.OutOrStdout()
			var walk func(m *member.Member, depth int)
			walk = func(m *member.Member, depth int) {
				if depth > member.MaxDepth {
					return
				}
				fmt.Fprintf(out, "%s%s %s [%s] casino %g%% slot %g%% losing %g%%\n",
					strings.Repeat("  ", depth), m.ID, m.Name, m.Level, m.CasinoRate, m.SlotRate, m.LosingRate)
				for _, c := range idx.Children(m.ID) {
					walk(c, depth+1)
				}
			}
			for _, r := range roots {
				walk(r, 0)
			}
			return nil
		},
	}
}

// memberFlags binds the member fields to a command's flags.
type memberFlags struct {
	m     member.Member
	level string
}

func (f *memberFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.m.ParentID, "parent", "", "parent member id (empty for a root)")
	fl.StringVar(&f.m.Name, "name", "", "display name")
	fl.StringVar(&f.level, "level", "", "grandmaster, master, branch or sub-branch (default: one below the parent)")
	fl.Float64Var(&f.m.CasinoRate, "casino", 0, "casino rate in percent")
	fl.Float64Var(&f.m.SlotRate, "slot", 0, "slot rate in percent")
	fl.Float64Var(&f.m.LosingRate, "losing", 0, "losing rate in percent")
}

// apply copies the flags that were set on cmd onto m.
func (f *memberFlags) apply(cmd *cobra.Command, m *member.Member) error {
	fl := cmd.Flags()
	if fl.Changed("parent") {
		m.ParentID = f.m.ParentID
	}
	if fl.Changed("name") {
		m.Name = f.m.Name
	}
	if fl.Changed("casino") {
		m.CasinoRate = f.m.CasinoRate
	}
	if fl.Changed("slot") {
		m.SlotRate = f.m.SlotRate
	}
	if fl.Changed("losing") {
		m.LosingRate = f.m.LosingRate
	}
	if fl.Changed("level") {
		lvl, err := member.ParseLevel(f.level)
		if err != nil {
			return err
		}
		m.Level = lvl
	}
	return nil
}

func newMemberAddCmd(a *app) *cobra.Command {
	var f memberFlags
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := member.Member{ID: args[0]}
			if err := f.apply(cmd, &m); err != nil {
				return err
			}
			if !cmd.Flags().Changed("level") && m.ParentID != "" {
				parent, err := a.svc.Member(ctx, m.ParentID)
				if err != nil {
					return err
				}
				m.Level = parent.Level.Child()
			}
			return a.svc.AddMember(ctx, m)
		},
	}
	f.register(cmd)
	return cmd
}

func newMemberUpdateCmd(a *app) *cobra.Command {
	var f memberFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a member's parent, name, level or rates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := a.svc.Member(ctx, args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd, m); err != nil {
				return err
			}
			return a.svc.UpdateMember(ctx, *m)
		},
	}
	f.register(cmd)
	return cmd
}

func newMemberRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a member without children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.RemoveMember(cmd.Context(), args[0])
		},
	}
}
