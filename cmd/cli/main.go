package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

const usage = "expected 'create-admin' or 'migrate' subcommand"

func main() {
	createAdminCmd := flag.NewFlagSet("create-admin", flag.ExitOnError)
	name := createAdminCmd.String("name", "", "Display name of the administrator")
	email := createAdminCmd.String("email", "", "Login email of the administrator")
	password := createAdminCmd.String("password", "", "Password (at least 8 characters)")
	super := createAdminCmd.Bool("super", false, "Grant the super-admin role")

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create-admin":
		_ = createAdminCmd.Parse(os.Args[2:])
		if *name == "" || *email == "" || *password == "" {
			fmt.Println("name, email and password are required")
			createAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		role := model.RoleAdmin
		if *super {
			role = model.RoleSuperAdmin
		}
		createAdmin(user.AdminInput{
			RegisterInput: user.RegisterInput{Name: *name, Email: *email, Password: *password},
			Role:          role,
		})
	case "migrate":
		_ = migrateCmd.Parse(os.Args[2:])
		db := openDB()
		defer db.Close()
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openDB connects and brings the schema up to date, so the CLI can run
// before the API has ever started.
func openDB() *sql.DB {
	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := store.ConnectPostgres(dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := store.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	return db
}

func createAdmin(in user.AdminInput) {
	db := openDB()
	defer db.Close()

	svc := user.NewService(store.NewPostgresUserStore(db))
	admin, err := svc.CreateAdmin(context.Background(), in)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Printf("%s '%s' created with id %s.\n", admin.Role, admin.Email, admin.ID)
}
