package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
)

type entryDoc struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	Present bool   `yaml:"present"`
}

type layoutDoc struct {
	Kind    string `yaml:"kind"`
	Name    string `yaml:"name"`
	Version uint16 `yaml:"version"`
	Size    uint32 `yaml:"size"`
	Tag     string `yaml:"tag"`
}

// layoutsView lists every registered layout, newest first within a kind.
func layoutsView(reg *registry.Registry) view {
	v := view{headers: []string{"KIND", "LAYOUT", "VERSION", "SIZE", "TAG"}}
	var docs []layoutDoc
	for _, kind := range reg.Kinds() {
		set, err := reg.Candidates(kind)
		if err != nil {
			continue
		}
		for _, l := range set.Layouts() {
			d := layoutDoc{Kind: string(kind), Name: l.Name, Version: l.Version, Size: l.Size, Tag: fmt.Sprintf("0x%08X", l.Tag())}
			docs = append(docs, d)
			v.rows = append(v.rows, []string{d.Kind, d.Name, fmt.Sprint(d.Version), fmt.Sprint(d.Size), d.Tag})
		}
	}
	v.data = docs
	return v
}

func newCheckCmd(a *app) *cobra.Command {
	var layouts bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which driver entry points are available",
		Long: `Resolve every known entry point against the loaded driver. With
--layouts, list the struct layouts each operation negotiates instead.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			if layouts {
				return a.printer().print(layoutsView(c.Registry()))
			}

			ids := resolver.Known()
			sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
			docs := make([]entryDoc, 0, len(ids))
			v := view{headers: []string{"FUNCTION", "ID", "PRESENT"}}
			for _, id := range ids {
				d := entryDoc{Name: id.String(), ID: fmt.Sprintf("0x%08X", uint32(id)), Present: c.Resolver().Has(id)}
				docs = append(docs, d)
				v.rows = append(v.rows, []string{d.Name, d.ID, yesNo(d.Present)})
			}
			v.data = docs
			st := c.Resolver().Stats()
			a.log.Debug("resolver stats", zap.Uint64("lookups", st.Lookups), zap.Int("cached", st.Cached))
			return a.printer().print(v)
		},
	}
	cmd.Flags().BoolVar(&layouts, "layouts", false, "list negotiated struct layouts")
	return cmd
}
