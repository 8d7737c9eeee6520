package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecolink/crud-clientes/internal/application/clientes"
	"github.com/ecolink/crud-clientes/internal/application/filtros"
	"github.com/ecolink/crud-clientes/internal/application/permisos"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/fecha"
)

// listColumns columnas de la vista de listado.
var listColumns = []entity.Field{
	entity.FieldID, entity.FieldName, entity.FieldZone, entity.FieldNeighborhood,
	entity.FieldAddress, entity.FieldPhone, entity.FieldClientType, entity.FieldStatus,
}

// splitPair separa "campo=valor".
func splitPair(s string) (entity.Field, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return "", "", fmt.Errorf("se esperaba campo=valor: %q", s)
	}
	return entity.Field(strings.TrimSpace(k)), v, nil
}

// storageDate acepta YYYY-MM-DD o DD/MM/YYYY y devuelve DD/MM/YYYY.
func storageDate(s string) string {
	s = strings.TrimSpace(s)
	if fecha.Valid(s) {
		return s
	}
	return fecha.ToStorage(s)
}

// buildFilters arma el store de filtros a partir de los flags de listado.
func buildFilters(a *app, include, from, to []string) (*filtros.Store, error) {
	f := filtros.NewStore(a.log.Component("filtros"))
	for _, p := range include {
		field, value, err := splitPair(p)
		if err != nil {
			return nil, err
		}
		if err := f.SetCategorical(field, value, true); err != nil {
			return nil, err
		}
	}
	ranges := map[entity.Field]filtros.Range{}
	for _, p := range from {
		field, value, err := splitPair(p)
		if err != nil {
			return nil, err
		}
		r := ranges[field]
		r.Desde = storageDate(value)
		ranges[field] = r
	}
	for _, p := range to {
		field, value, err := splitPair(p)
		if err != nil {
			return nil, err
		}
		r := ranges[field]
		r.Hasta = storageDate(value)
		ranges[field] = r
	}
	for field, r := range ranges {
		if err := f.SetDateRange(field, r, true); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeClients(out io.Writer, list []entity.Client) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := make([]string, len(listColumns))
	for i, f := range listColumns {
		header[i] = strings.ToUpper(string(f))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i := range list {
		row := make([]string, len(listColumns))
		for j, f := range listColumns {
			row[j] = display(&list[i], f)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func writeClient(out io.Writer, c *entity.Client) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range entity.AllFields {
		fmt.Fprintf(w, "%s\t%s\n", f, display(c, f))
	}
	return w.Flush()
}

func display(c *entity.Client, f entity.Field) string {
	if v, ok := c.Value(f); ok {
		return v
	}
	return entity.NullPlaceholder
}

// writeFormErrors lista los errores por campo que dejó el formulario.
func writeFormErrors(out io.Writer, form *clientes.Form) {
	errs := form.Errors()
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %s\n", k, errs[k])
	}
}

// fillForm aplica los pares campo=valor al formulario.
func fillForm(form *clientes.Form, pairs []string) error {
	for _, p := range pairs {
		field, value, err := splitPair(p)
		if err != nil {
			return err
		}
		if err := form.SetField(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *root) newListCmd() *cobra.Command {
	var include, from, to []string
	cmd := &cobra.Command{
		Use:   "listar",
		Short: "Lista los clientes, opcionalmente filtrados",
		Example: `  clientes listar --filtro zona=Norte --filtro zona=Sur
  clientes listar --desde contratacion=2024-01-01 --hasta contratacion=2024-06-30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapView, func() error {
					f, err := buildFilters(a, include, from, to)
					if err != nil {
						return err
					}
					if err := a.clients.LoadAll(ctx); err != nil {
						return err
					}
					all := a.clients.Clients()
					shown := f.Apply(all)
					if err := writeClients(cmd.OutOrStdout(), shown); err != nil {
						return err
					}
					if n := f.ActiveCount(); n > 0 {
						fmt.Fprintf(cmd.ErrOrStderr(), "%d de %d clientes (%d filtros activos)\n", len(shown), len(all), n)
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&include, "filtro", nil, "Valor aceptado de un campo gestionable (campo=valor, repetible)")
	cmd.Flags().StringArrayVar(&from, "desde", nil, "Inicio de rango de fecha (campo=fecha)")
	cmd.Flags().StringArrayVar(&to, "hasta", nil, "Fin de rango de fecha (campo=fecha)")
	return cmd
}

func (r *root) newValuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "valores <campo>",
		Short: "Valores distintos de un campo entre los clientes cargados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := entity.Field(args[0])
			if !field.IsKnown() {
				return fmt.Errorf("campo desconocido: %q", args[0])
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapView, func() error {
					if err := a.clients.LoadAll(ctx); err != nil {
						return err
					}
					for _, v := range filtros.UniqueValues(a.clients.Clients(), field) {
						fmt.Fprintln(cmd.OutOrStdout(), v)
					}
					return nil
				})
			})
		},
	}
}

func (r *root) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Muestra todos los datos de un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapView, func() error {
					c, err := a.clients.Get(ctx, id)
					if err != nil {
						return err
					}
					return writeClient(cmd.OutOrStdout(), c)
				})
			})
		},
	}
}

func (r *root) newCreateCmd() *cobra.Command {
	var pairs []string
	cmd := &cobra.Command{
		Use:     "crear",
		Short:   "Da de alta un cliente",
		Example: `  clientes crear --campo zona=Norte --campo nombre="Ana Pérez" --campo barrio=Centro --campo direccion="Calle 1" --campo telefono=+5491122334455 --campo tipoCliente=Particular`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapCreateEdit, func() error {
					form := clientes.NewForm(entity.NewDraft())
					defer form.Close()
					if err := fillForm(form, pairs); err != nil {
						return err
					}
					var created *entity.Client
					err := form.Submit(ctx, func(ctx context.Context, c entity.Client) error {
						var err error
						created, err = a.clients.Create(ctx, c)
						return err
					})
					if err != nil {
						writeFormErrors(cmd.ErrOrStderr(), form)
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cliente %d creado.\n", created.ID)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&pairs, "campo", nil, "Valor de un campo (campo=valor, repetible)")
	return cmd
}

func (r *root) newEditCmd() *cobra.Command {
	var pairs []string
	cmd := &cobra.Command{
		Use:   "editar <id>",
		Short: "Modifica un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapCreateEdit, func() error {
					current, err := a.clients.Get(ctx, id)
					if err != nil {
						return err
					}
					a.clients.StartEdit(*current)
					editing, _ := a.clients.Editing()
					form := clientes.NewForm(editing)
					defer form.Close()
					if err := fillForm(form, pairs); err != nil {
						a.clients.CancelEdit()
						return err
					}
					err = form.Submit(ctx, func(ctx context.Context, c entity.Client) error {
						_, err := a.clients.Update(ctx, id, c)
						return err
					})
					if err != nil {
						a.clients.CancelEdit()
						writeFormErrors(cmd.ErrOrStderr(), form)
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cliente %d actualizado.\n", id)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&pairs, "campo", nil, "Valor de un campo (campo=valor, repetible)")
	return cmd
}

func (r *root) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrar <id>",
		Short: "Elimina un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				return a.guard(permisos.CapCreateEdit, func() error {
					if err := a.clients.Delete(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cliente %d eliminado.\n", id)
					return nil
				})
			})
		},
	}
}
