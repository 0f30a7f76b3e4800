// Package cli provides the Cobra-based terminal for the register.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"panaderia/internal/client"
	"panaderia/internal/domain"
	"panaderia/internal/pos"
	"panaderia/pkg/logger"
)

var (
	rootCmd = &cobra.Command{
		Use:   "caja",
		Short: "Terminal de venta de la panaderia",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// IMPORTANT: allow tests to inject backend
			if api == nil {
				api = client.New(viper.GetString("api-url"), nil)
			}
			logger.New(logger.Options{Service: "caja", Level: viper.GetString("log-level")})
			return nil
		},
	}

	api *client.Client
)

func token() string { return viper.GetString("token") }

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("api-url", "http://localhost:4000", "backend base URL")
	pf.String("token", "", "bearer token (see: caja login)")
	pf.String("log-level", "info", "log level")
	_ = viper.BindPFlag("api-url", pf.Lookup("api-url"))
	_ = viper.BindPFlag("token", pf.Lookup("token"))
	_ = viper.BindPFlag("log-level", pf.Lookup("log-level"))
	viper.SetEnvPrefix("caja")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// login
	loginCmd := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Obtener un token de sesion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := api.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Token)
			slog.Info("sesion iniciada", "usuario", res.User.Email, "rol", res.User.Role)
			return nil
		},
	}

	// productos
	productosCmd := &cobra.Command{
		Use:   "productos",
		Short: "Listar el catalogo",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := api.Products(cmd.Context(), token())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOMBRE\tPRECIO\tSTOCK")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\tS/ %s\t%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
			}
			return w.Flush()
		},
	}

	// clientes
	clientesCmd := &cobra.Command{
		Use:   "clientes",
		Short: "Listar clientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			customers, err := api.Customers(cmd.Context(), token())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOMBRE\tTELEFONO\tEMAIL")
			for _, c := range customers {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, c.Email)
			}
			return w.Flush()
		},
	}

	// caja
	cajaCmd := &cobra.Command{
		Use:   "resumen",
		Short: "Resumen de caja del dia",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := api.CashSummary(cmd.Context(), token())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fecha:    %s\n", sum.Date.Format("2006-01-02"))
			fmt.Fprintf(out, "Ingresos: S/ %s\n", sum.Summary.Income.StringFixed(2))
			fmt.Fprintf(out, "Egresos:  S/ %s\n", sum.Summary.Expense.StringFixed(2))
			fmt.Fprintf(out, "Balance:  S/ %s\n", sum.Summary.Balance.StringFixed(2))
			for _, v := range sum.Sales {
				fmt.Fprintf(out, "  venta %s x%d  S/ %s\n", v.Product, v.Quantity, v.Total.StringFixed(2))
			}
			for _, g := range sum.Expenses {
				fmt.Fprintf(out, "  gasto %s  S/ %s\n", g.Category, g.Amount.StringFixed(2))
			}
			return nil
		},
	}

	// reporte
	var mes int
	reporteCmd := &cobra.Command{
		Use:   "reporte",
		Short: "Reporte mensual",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mes == 0 {
				mes = int(time.Now().Month())
			}
			r, err := api.FetchMonthlyReport(cmd.Context(), token(), mes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Balance general: ingresos S/ %s, egresos S/ %s\n",
				r.Summary.Income.StringFixed(2), r.Summary.Expense.StringFixed(2))
			fmt.Fprintf(out, "Ticket promedio: S/ %s en %d ventas\n", r.Ticket.Average.StringFixed(2), r.Ticket.Sales)
			for _, p := range r.TopProducts {
				fmt.Fprintf(out, "  %s x%d\n", p.Product, p.Quantity)
			}
			for _, m := range r.Methods {
				fmt.Fprintf(out, "  %s: S/ %s\n", m.Method, m.Total.StringFixed(2))
			}
			return nil
		},
	}
	reporteCmd.Flags().IntVar(&mes, "mes", 0, "mes 1-12 (por defecto el actual)")

	// venta: interactive shell
	ventaCmd := &cobra.Command{
		Use:   "venta",
		Short: "Registrar una venta (modo interactivo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVentaShell(cmd.Context(), cmd.OutOrStdout(), pos.NewSession(api, token()))
		},
	}

	rootCmd.AddCommand(loginCmd, productosCmd, clientesCmd, cajaCmd, reporteCmd, ventaCmd)
}

// runVentaShell цикл кассира: add/rm/cliente/pago/fiado/ok
func runVentaShell(ctx context.Context, out io.Writer, session *pos.Session) error {
	if err := session.LoadCatalog(ctx); err != nil {
		return err
	}
	if err := session.LoadCustomers(ctx); err != nil {
		return err
	}

	method := domain.PaymentCash
	fiado := false
	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprintf(out, "venta[%s]> ", session.Total().StringFixed(2))
		line, err := r.ReadString('\n')
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, rest := fields[0], fields[1:]
		switch cmd {
		case "add":
			withID(out, rest, func(id int64) {
				if err := session.AddToCart(id); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			})
		case "rm":
			withID(out, rest, func(id int64) { session.RemoveUnit(id) })
		case "del":
			withID(out, rest, func(id int64) { session.RemoveLine(id) })
		case "lineas":
			for _, l := range session.Lines() {
				fmt.Fprintf(out, "  %d  %s x%d  S/ %s\n", l.ProductID, l.Name, l.Quantity, l.UnitPrice.StringFixed(2))
			}
		case "cliente":
			withID(out, rest, func(id int64) {
				for _, c := range session.Customers() {
					if c.ID == id {
						session.SelectCustomer(c)
						fmt.Fprintf(out, "cliente: %s\n", c.Name)
						return
					}
				}
				fmt.Fprintln(out, "error: cliente no encontrado")
			})
		case "nuevo":
			if len(rest) == 0 {
				fmt.Fprintln(out, "uso: nuevo <nombre> [telefono] [email]")
				continue
			}
			draft := domain.CustomerDraft{Name: rest[0]}
			if len(rest) > 1 {
				draft.Phone = rest[1]
			}
			if len(rest) > 2 {
				draft.Email = rest[2]
			}
			c, err := session.CreateCustomer(ctx, draft)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "cliente creado: %d %s\n", c.ID, c.Name)
		case "pago":
			if fiado {
				// как в интерфейсе web: при fiado выбор метода заблокирован
				fmt.Fprintln(out, "venta fiada: el metodo se fija al cobrar")
				continue
			}
			if len(rest) != 1 || !domain.PaymentMethod(rest[0]).Valid() {
				fmt.Fprintln(out, "uso: pago EFECTIVO|YAPE|TRANSFERENCIA")
				continue
			}
			method = domain.PaymentMethod(rest[0])
		case "fiado":
			fiado = !fiado
			fmt.Fprintf(out, "fiado: %v\n", fiado)
		case "reset":
			session.Reset()
		case "ok":
			sale, err := session.Submit(ctx, method, fiado)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "venta #%d registrada, total S/ %s\n", sale.ID, sale.Total.StringFixed(2))
			fiado = false
		case "salir", "exit":
			return nil
		default:
			fmt.Fprintln(out, "comandos: add rm del lineas cliente nuevo pago fiado reset ok salir")
		}
	}
}

func withID(out io.Writer, args []string, fn func(int64)) {
	if len(args) != 1 {
		fmt.Fprintln(out, "se requiere un id")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintln(out, "id invalido")
		return
	}
	fn(id)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("comando fallo", "error", err)
	}
	return err
}
