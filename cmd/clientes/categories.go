package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecolink/crud-clientes/internal/application/permisos"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

func writeOptions(out io.Writer, field entity.Field, opts []entity.CategoryOption) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, o := range opts {
		color := "-"
		if o.Color != nil {
			color = *o.Color
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", field, o.Value, color)
	}
	return w.Flush()
}

func optionalColor(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *root) newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorias [campo]",
		Short: "Lista los valores de los campos gestionables",
		Long:  "Lista los valores vigentes de un campo gestionable, o de todos si no se indica ninguno.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapView, func() error {
					if len(args) == 1 {
						field := entity.Field(args[0])
						opts, err := a.categories.List(ctx, field)
						if err != nil {
							return err
						}
						return writeOptions(cmd.OutOrStdout(), field, opts)
					}
					if err := a.categories.LoadAll(ctx); err != nil {
						return err
					}
					for _, f := range entity.ManagedFields {
						if err := writeOptions(cmd.OutOrStdout(), f, a.categories.Options(f)); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}

	var createColor string
	create := &cobra.Command{
		Use:   "crear <campo> <valor>",
		Short: "Agrega un valor a un campo gestionable (ADMIN)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapManageCategories, func() error {
					cat, err := a.categories.Create(ctx, entity.Field(args[0]), args[1], optionalColor(createColor))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Valor %q agregado a %s.\n", cat.Value, cat.Field)
					return nil
				})
			})
		},
	}
	create.Flags().StringVar(&createColor, "color", "", "Color en formato #RRGGBB")

	var renameColor string
	rename := &cobra.Command{
		Use:   "renombrar <campo> <valor> <nuevo>",
		Short: "Renombra un valor y actualiza los clientes que lo usan (ADMIN)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapManageCategories, func() error {
					cat, err := a.categories.Rename(ctx, entity.Field(args[0]), args[1], args[2], optionalColor(renameColor))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Valor %q renombrado a %q.\n", args[1], cat.Value)
					return nil
				})
			})
		},
	}
	rename.Flags().StringVar(&renameColor, "color", "", "Nuevo color en formato #RRGGBB")

	remove := &cobra.Command{
		Use:   "borrar <campo> <valor>",
		Short: "Da de baja un valor que ningún cliente usa (ADMIN)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapManageCategories, func() error {
					if err := a.categories.Delete(ctx, entity.Field(args[0]), args[1]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Valor %q eliminado de %s.\n", args[1], args[0])
					return nil
				})
			})
		},
	}

	cmd.AddCommand(create, rename, remove)
	return cmd
}
