package db

import (
	"log"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the gorm handle for the configured driver.
// mysql is the production default; sqlite keeps single-node deploys simple.
func Connect(driver, dsn string) *gorm.DB {
	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		gdb, err = gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	default:
		gdb, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("db connect driver=%s err=%v", driver, err)
	}
	return gdb
}
