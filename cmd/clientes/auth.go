package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// prompt pide un valor por la entrada estándar si value está vacío.
func prompt(cmd *cobra.Command, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), label+": ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("leer %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (r *root) promptPassword(cmd *cobra.Command, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), label+": ")
	pw, err := r.env.readPassword()
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("leer contraseña: %w", err)
	}
	return pw, nil
}

func (r *root) newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = prompt(cmd, "Email", email); err != nil {
				return err
			}
			if password, err = r.promptPassword(cmd, "Contraseña", password); err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.session.Login(ctx, email, password); err != nil {
					if msg := a.session.State().Error; msg != "" {
						return errors.New(msg)
					}
					return err
				}
				u := a.session.User()
				fmt.Fprintf(cmd.OutOrStdout(), "Bienvenido/a %s (%s).\n", u.Name, u.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Contraseña (se pide si no se indica)")
	return cmd
}

func (r *root) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión y borra las credenciales guardadas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				a.session.Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada.")
				return nil
			})
		},
	}
}

func (r *root) newProfileCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "perfil",
		Short: "Muestra o actualiza el perfil del usuario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				if name != "" {
					msg, err := a.session.UpdateProfile(ctx, name)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
				u, err := a.session.RefreshProfile(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "ID\t%d\n", u.ID)
				fmt.Fprintf(w, "Email\t%s\n", u.Email)
				fmt.Fprintf(w, "Nombre\t%s\n", u.Name)
				fmt.Fprintf(w, "Rol\t%s\n", u.Role)
				fmt.Fprintf(w, "Verificado\t%s\n", yesNo(u.Verified))
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&name, "nombre", "", "Nuevo nombre")
	return cmd
}

func (r *root) newRegisterCmd() *cobra.Command {
	var email, name, role string
	cmd := &cobra.Command{
		Use:   "registro",
		Short: "Solicita el alta de un usuario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.session.Register(ctx, email, name, entity.Role(strings.ToUpper(role)))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&name, "nombre", "", "Nombre")
	cmd.Flags().StringVar(&role, "rol", string(entity.RoleLector), "Rol solicitado: ADMIN, OPERADOR o LECTOR")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("nombre")
	return cmd
}

func (r *root) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verificar <token>",
		Short: "Verifica el email con el token recibido e inicia sesión",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.session.VerifyEmail(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
}

func (r *root) newResetCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Pide el restablecimiento de la contraseña",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.session.RequestPasswordReset(ctx, email)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email de la cuenta")
	_ = cmd.MarkFlagRequired("email")

	var password string
	confirm := &cobra.Command{
		Use:   "confirmar <token>",
		Short: "Fija la nueva contraseña con el token recibido",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := r.promptPassword(cmd, "Nueva contraseña", password)
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.session.ConfirmPasswordReset(ctx, args[0], pw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	confirm.Flags().StringVar(&password, "password", "", "Nueva contraseña (se pide si no se indica)")

	var resendEmail string
	resend := &cobra.Command{
		Use:   "reenviar-verificacion",
		Short: "Reenvía el email de verificación",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.session.ResendVerification(ctx, resendEmail)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	resend.Flags().StringVar(&resendEmail, "email", "", "Email de la cuenta")
	_ = resend.MarkFlagRequired("email")

	cmd.AddCommand(confirm, resend)
	return cmd
}

func (r *root) newRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solicitudes",
		Short: "Lista las solicitudes de registro (ADMIN)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.session.LoadRequests(ctx); err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tEMAIL\tNOMBRE\tROL\tESTADO")
				for _, req := range a.session.Requests() {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", req.ID, req.Email, req.Name, req.Role, requestStatus(req))
				}
				return w.Flush()
			})
		},
	}

	var password string
	approve := &cobra.Command{
		Use:   "aprobar <id>",
		Short: "Aprueba una solicitud con la contraseña inicial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pw, err := r.promptPassword(cmd, "Contraseña inicial", password)
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				msg, err := a.session.ApproveRequest(ctx, id, pw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	approve.Flags().StringVar(&password, "password", "", "Contraseña inicial (se pide si no se indica)")

	var reason string
	reject := &cobra.Command{
		Use:   "rechazar <id>",
		Short: "Rechaza una solicitud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				var motivo *string
				if reason != "" {
					motivo = &reason
				}
				msg, err := a.session.RejectRequest(ctx, id, motivo)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	reject.Flags().StringVar(&reason, "motivo", "", "Motivo del rechazo")

	cmd.AddCommand(approve, reject)
	return cmd
}

func requestStatus(req entity.RegistrationRequest) string {
	switch {
	case req.Approved:
		return "aprobada"
	case req.Rejected:
		return "rechazada"
	default:
		return "pendiente"
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido: %q", s)
	}
	return id, nil
}

func yesNo(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}
