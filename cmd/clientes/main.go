// CLI del personal de ECOLINK: sesión, clientes, categorías y solicitudes de registro
// contra la API remota.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecolink/crud-clientes/internal/domain"
)

const version = "0.1.0"

// root estado de los flags globales compartido por los subcomandos.
type root struct {
	env       env
	apiURL    string
	storeKind string
	verbose   bool
	metrics   bool
}

func newRootCmd(e env) *cobra.Command {
	r := &root{env: e}
	cmd := &cobra.Command{
		Use:           "clientes",
		Short:         "Gestión de clientes de ECOLINK",
		Long:          "Administra clientes, categorías y usuarios de ECOLINK desde la terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&r.apiURL, "api-url", "", "Origen de la API (por defecto API_URL)")
	cmd.PersistentFlags().StringVar(&r.storeKind, "sesion", "", "Almacén de sesión: sqlite, keyring o memory (por defecto SESSION_STORE)")
	cmd.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Registro detallado")
	cmd.PersistentFlags().BoolVar(&r.metrics, "metricas", false, "Muestra al final las llamadas hechas a la API")

	cmd.AddCommand(
		newVersionCmd(),
		r.newLoginCmd(),
		r.newLogoutCmd(),
		r.newProfileCmd(),
		r.newRegisterCmd(),
		r.newVerifyCmd(),
		r.newResetCmd(),
		r.newRequestsCmd(),
		r.newListCmd(),
		r.newValuesCmd(),
		r.newShowCmd(),
		r.newCreateCmd(),
		r.newEditCmd(),
		r.newDeleteCmd(),
		r.newCategoriesCmd(),
	)
	return cmd
}

// run abre el núcleo, ejecuta fn y lo libera.
func (r *root) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := r.open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	err = fn(cmd.Context(), a)
	if r.metrics {
		if merr := a.writeMetrics(cmd.ErrOrStderr()); merr != nil {
			a.log.Warn().Err(merr).Msg("leer métricas")
		}
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clientes versión %s\n", version)
		},
	}
}

func main() {
	cmd := newRootCmd(defaultEnv())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", domain.MessageOf(err))
		os.Exit(1)
	}
}
