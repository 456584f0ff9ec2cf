package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/oplog/oplog/config"
	"github.com/oplog/oplog/database"
	"github.com/oplog/oplog/export"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/web"
	"github.com/oplog/oplog/web/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cliActor is who the command line acts as.
var cliActor = logbook.Actor{Name: "cli", Role: logbook.RoleMaster}

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func openDB() (*gorm.DB, error) {
	return database.InitDB(config.GetDBPath())
}

func withDB(fn func(db *gorm.DB) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.CloseDB(db)
	return fn(db)
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	db, err := openDB()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB(db)

	server := web.NewServer(db, web.OptionsFromConfig())
	if err = server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting servers...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(db, web.OptionsFromConfig())
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("Shutting down servers.")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDB() error {
	return withDB(func(db *gorm.DB) error {
		fmt.Println("database migrated:", config.GetDBPath())
		return nil
	})
}

func importLegacy(path string) error {
	if path == "" {
		return fmt.Errorf("--db is required")
	}
	return withDB(func(db *gorm.DB) error {
		res, err := database.ImportLegacy(db, path)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d users and %d procedures, skipped %d rows\n", res.Users, res.Procedures, res.Skipped)
		for _, reason := range res.SkipReasons {
			fmt.Println("  skipped:", reason)
		}
		if res.ExistingUser > 0 {
			fmt.Printf("kept %d existing users\n", res.ExistingUser)
		}
		return nil
	})
}

func addUser(username, password, role string) error {
	r, ok := logbook.ParseRole(role)
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}
	return withDB(func(db *gorm.DB) error {
		u, err := service.NewUserAdminService(db).CreateUser(username, password, r)
		if err != nil {
			return err
		}
		fmt.Printf("user %s created with role %s\n", u.Username, u.Role)
		return nil
	})
}

func listUsers() error {
	return withDB(func(db *gorm.DB) error {
		users, err := service.NewUserAdminService(db).ListUsers()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tPROCEDURES")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", u.Id, u.Username, u.Role, u.Procedures)
		}
		return w.Flush()
	})
}

func deleteUser(username string) error {
	return withDB(func(db *gorm.DB) error {
		if err := service.NewUserAdminService(db).DeleteUserByName(cliActor, username); err != nil {
			return err
		}
		fmt.Println("user deleted:", username)
		return nil
	})
}

type exportFlags struct {
	user   string
	view   string
	format string
	out    string
}

func exportLogbook(flags exportFlags) error {
	f, err := export.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	var view logbook.View
	if flags.view != "" {
		v, ok := logbook.ParseView(flags.view)
		if !ok {
			return fmt.Errorf("unknown view %q", flags.view)
		}
		view = v
	}

	actor := cliActor
	if flags.user != "" {
		actor = logbook.Actor{Name: flags.user, Role: logbook.RoleResident}
	}

	return withDB(func(db *gorm.DB) error {
		reports := service.NewReportService(db)
		table, err := reports.Table(actor, view, logbook.Filter{})
		if err != nil {
			return err
		}
		out := flags.out
		if out == "" {
			out = export.FileName(flags.user, f)
		}
		if out == "-" {
			return export.Write(os.Stdout, f, table, reports.Title(actor))
		}
		if err := export.WriteFile(out, f, table, reports.Title(actor)); err != nil {
			return err
		}
		fmt.Printf("%d rows written to %s\n", len(table.Rows), out)
		return nil
	})
}

func printSummary(user string, year int) error {
	if year == 0 {
		year = time.Now().Year()
	}
	return withDB(func(db *gorm.DB) error {
		stats := service.NewStatsService(db)
		categories, err := stats.CountsByCategory(user)
		if err != nil {
			return err
		}
		roles, err := stats.CountsByRole(user)
		if err != nil {
			return err
		}
		progress, err := stats.Progress(user, year)
		if err != nil {
			return err
		}

		who := user
		if who == "" {
			who = "all residents"
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Summary for %s\n\n", who)
		for _, c := range categories {
			fmt.Fprintf(w, "%s\t%d\n", c.Key, c.Count)
		}
		fmt.Fprintln(w)
		for _, r := range roles {
			fmt.Fprintf(w, "%s\t%d\n", r.Key, r.Count)
		}
		fmt.Fprintf(w, "\nProgress %d\n", year)
		for _, p := range progress {
			fmt.Fprintf(w, "%s\t%s\n", p.Category, p.Display)
		}
		return w.Flush()
	})
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           config.GetName(),
		Short:         "Surgical logbook for residents, tutors and masters",
		Version:       config.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv()
		},
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateDB()
		},
	})

	var legacyPath string
	importCmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import users and procedures from an old logbook database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return importLegacy(legacyPath)
		},
	}
	importCmd.Flags().StringVar(&legacyPath, "db", "", "path of the old database file")
	root.AddCommand(importCmd)

	root.AddCommand(newUserCmd())

	var ef exportFlags
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a logbook as csv, pdf or json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportLogbook(ef)
		},
	}
	exportCmd.Flags().StringVar(&ef.user, "user", "", "export this resident's logbook (all residents when empty)")
	exportCmd.Flags().StringVar(&ef.view, "view", "", "resident or tutor (default depends on --user)")
	exportCmd.Flags().StringVar(&ef.format, "format", "csv", "csv, pdf or json")
	exportCmd.Flags().StringVar(&ef.out, "out", "", "output file, - for stdout")
	root.AddCommand(exportCmd)

	var summaryUser string
	var summaryYear int
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print procedure counts and annual progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSummary(summaryUser, summaryYear)
		},
	}
	summaryCmd.Flags().StringVar(&summaryUser, "user", "", "resident to summarize (all when empty)")
	summaryCmd.Flags().IntVar(&summaryYear, "year", 0, "year for the progress section (default current year)")
	root.AddCommand(summaryCmd)

	return root
}

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var password, role string
	addCmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addUser(args[0], password, role)
		},
	}
	addCmd.Flags().StringVar(&password, "password", "", "initial password")
	addCmd.Flags().StringVar(&role, "role", string(logbook.RoleResident), "resident or master")
	_ = addCmd.MarkFlagRequired("password")

	userCmd.AddCommand(addCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List accounts",
			RunE: func(cmd *cobra.Command, args []string) error {
				return listUsers()
			},
		},
		&cobra.Command{
			Use:   "delete <username>",
			Short: "Delete an account and its procedures",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return deleteUser(strings.TrimSpace(args[0]))
			},
		},
	)
	return userCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
