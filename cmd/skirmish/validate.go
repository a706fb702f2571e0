package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skirmish/internal/game/roster"
	"github.com/cory-johannsen/skirmish/internal/setup"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [ENCOUNTER.yaml...]",
		Short: "Load configured content and any encounter files, reporting every problem",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := setup.LoadContent(a.cfg, a.logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "content ok: %d outcomes, %d conditions, %d abilities, %d weapons\n",
				len(content.Table.Entries()), len(content.Conditions.All()), len(content.Abilities.All()), len(content.Inventory.AllWeapons()))

			var errs []error
			for _, path := range args {
				if err := validateEncounter(content, path); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(out, "%s ok\n", path)
			}
			return errors.Join(errs...)
		},
	}
}

// validateEncounter checks that path parses and that every power it names
// is a registered ability.
func validateEncounter(content *setup.Content, path string) error {
	enc, err := roster.LoadFile(path)
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range enc.Combatants {
		for _, id := range r.Powers {
			if _, ok := content.Abilities.Get(id); !ok {
				errs = append(errs, fmt.Errorf("%s: %s knows unknown ability %q", path, r.Name, id))
			}
		}
		for _, id := range r.Inventory {
			if content.Inventory.Weapon(id) == nil && content.Inventory.Armor(id) == nil {
				errs = append(errs, fmt.Errorf("%s: %s carries unknown item %q", path, r.Name, id))
			}
		}
	}
	return errors.Join(errs...)
}
