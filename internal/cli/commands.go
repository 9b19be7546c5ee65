package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/metaclass/internal/loadable"
	"github.com/vk/metaclass/internal/member"
	"github.com/vk/metaclass/internal/registry"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func newClassesCommand(o *options) *cobra.Command {
	var namespace, derivedFrom string
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List registered classes",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var rows [][]string
			for _, c := range a.Registry().Classes() {
				if namespace != "" && c.Namespace() != namespace {
					continue
				}
				if derivedFrom != "" && !c.IsDerivedFromName(derivedFrom) {
					continue
				}
				rows = append(rows, []string{c.QualifiedName(), c.BaseClassName(), moduleName(c), c.State().String()})
			}
			return renderTable(o.outW, []string{"Class", "Base", "Module", "State"}, rows)
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "Only list classes in this namespace.")
	cmd.Flags().StringVar(&derivedFrom, "derived-from", "", "Only list classes deriving from this class.")
	return cmd
}

func newDescribeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe CLASS",
		Short: "Show the members and properties of a class",
		Long:  "Resolves the class's module if needed and prints its full member view, inherited members included.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.Context(cmd.Context())

			c := a.Registry().Class(args[0])
			if c == nil {
				return &ExitError{Code: 1, Message: fmt.Sprintf("unknown class %q", args[0])}
			}
			if err := c.Init(ctx); err != nil {
				return err
			}

			derived := make([]string, 0)
			for _, d := range c.DerivedClasses() {
				derived = append(derived, d.QualifiedName())
			}
			fields := [][2]string{
				{"Class", c.QualifiedName()},
				{"Description", c.Description()},
				{"Base", c.BaseClassName()},
				{"Module", moduleName(c)},
				{"Derived", strings.Join(derived, ", ")},
			}
			for _, f := range fields {
				if err := renderField(o.outW, f[0], f[1]); err != nil {
					return err
				}
			}

			members, err := c.Members(ctx)
			if err != nil {
				return err
			}
			ctors, err := c.Constructors(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(members)+len(ctors))
			for _, ctor := range ctors {
				rows = append(rows, memberRow(c, ctor))
			}
			for _, m := range members {
				rows = append(rows, memberRow(c, m))
			}
			fmt.Fprintln(o.outW)
			if err := renderTable(o.outW, []string{"Kind", "Name", "Signature", "Access", "Declared In"}, rows); err != nil {
				return err
			}

			props, err := c.Properties(ctx)
			if err != nil {
				return err
			}
			if len(props) == 0 {
				return nil
			}
			propRows := make([][]string, 0, len(props))
			var keys []string
			for k := range props {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				propRows = append(propRows, []string{k, props[k]})
			}
			fmt.Fprintln(o.outW)
			return renderTable(o.outW, []string{"Property", "Value"}, propRows)
		},
	}
}

func newModulesCommand(o *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List declared and resident modules",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var loadErr error
			if all {
				loadErr = a.LoadAll(a.Context(cmd.Context()))
			}

			var rows [][]string
			for _, m := range a.Registry().Modules() {
				status, reason := "declared", ""
				switch {
				case m.Resident():
					status = "resident"
				case m.Err() != nil:
					status, reason = "failed", m.Err().Error()
				}
				rows = append(rows, []string{
					fmt.Sprint(m.ID()), m.Name(), status, fmt.Sprint(len(m.Classes())), m.Source(), reason,
				})
			}
			if err := renderTable(o.outW, []string{"ID", "Module", "Status", "Classes", "Source", "Error"}, rows); err != nil {
				return err
			}
			return loadErr
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Load every compiled-in module before listing.")
	return cmd
}

func newLoadersCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "loaders",
		Short: "List file loaders and the formats they handle",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.Context(cmd.Context())

			var rows [][]string
			for _, l := range a.Loaders().Loaders(ctx) {
				rows = append(rows, []string{
					l.Class().QualifiedName(),
					l.TypeName(),
					strings.Join(l.Formats(), ","),
					strings.Join(mediaTypes(l.Formats()), ","),
					yesNo(l.CanLoad()),
					yesNo(l.CanSave()),
					l.Description(),
				})
			}
			return renderTable(o.outW, []string{"Loader", "Type", "Formats", "Media Types", "Load", "Save", "Description"}, rows)
		},
	}
}

func newLoadCommand(o *options) *cobra.Command {
	var saveTo string
	cmd := &cobra.Command{
		Use:   "load FILE",
		Short: "Load a file into a new object and print its attributes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.Context(cmd.Context())
			mgr := a.Loaders()

			obj, err := mgr.LoadNew(ctx, args[0])
			if err != nil {
				return err
			}
			l := mgr.LoaderByExtension(ctx, filepath.Ext(args[0]))
			if l == nil {
				return fmt.Errorf("%w: %s", loadable.ErrUnsupportedFormat, args[0])
			}
			cls := a.Registry().Class(l.TypeName())
			if cls == nil {
				return fmt.Errorf("%w: %s", loadable.ErrNoTargetClass, l.TypeName())
			}
			attrs, err := cls.Attributes(ctx)
			if err != nil {
				return err
			}

			var rows [][]string
			for _, attr := range attrs {
				if !attr.HasAccessors() {
					continue
				}
				v, err := attr.Get(obj)
				if err != nil {
					return fmt.Errorf("attribute %s: %w", attr.Name(), err)
				}
				raw, err := ctyjson.Marshal(v, attr.Type())
				if err != nil {
					return fmt.Errorf("attribute %s: %w", attr.Name(), err)
				}
				rows = append(rows, []string{attr.Name(), attr.Type().FriendlyName(), string(raw)})
			}
			if err := renderTable(o.outW, []string{"Attribute", "Type", "Value"}, rows); err != nil {
				return err
			}

			if saveTo == "" {
				return nil
			}
			if err := mgr.SaveAs(ctx, l.TypeName(), obj, saveTo); err != nil {
				return err
			}
			_, err = fmt.Fprintf(o.outW, "Saved %s as %s.\n", cls.QualifiedName(), saveTo)
			return err
		},
	}
	cmd.Flags().StringVar(&saveTo, "save", "", "Write the loaded object to this path, choosing the loader by extension.")
	return cmd
}

func moduleName(c *registry.Class) string {
	if m := c.Module(); m != nil {
		return m.Name()
	}
	return ""
}

// memberRow renders one member of c, naming the class in c's chain that
// declares it.
func memberRow(c *registry.Class, d member.Descriptor) []string {
	access := ""
	if attr, ok := d.(*member.Attribute); ok {
		access = attr.Access().String()
	}
	owner := ""
	for cur := c; cur != nil; cur = cur.BaseClass() {
		if slices.Contains(cur.OwnMembers(), d) {
			owner = cur.QualifiedName()
			break
		}
	}
	return []string{d.Kind().String(), d.Name(), d.Signature().String(), access, owner}
}

func mediaTypes(formats []string) []string {
	var out []string
	for _, f := range formats {
		if mt := loadable.MediaType(f); mt != "" && !slices.Contains(out, mt) {
			out = append(out, mt)
		}
	}
	return out
}
