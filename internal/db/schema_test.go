package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestEnsureSchemaCreatesMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	for _, tbl := range tables {
		if tbl.name == "users" {
			mock.ExpectQuery("information_schema\\.tables").WithArgs("users").
				WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users"))
			continue
		}
		mock.ExpectQuery("information_schema\\.tables").WithArgs(tbl.name).
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + tbl.name).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectQuery("information_schema\\.statistics").WithArgs("buses", searchIndex).
		WillReturnRows(sqlmock.NewRows([]string{"index_name"}))
	mock.ExpectExec("CREATE INDEX " + searchIndex).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := EnsureSchema(context.Background(), conn); err != nil {
		t.Fatalf("EnsureSchema error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHelpers(t *testing.T) {
	if got := Placeholders(3); got != "?,?,?" {
		t.Fatalf("Placeholders(3) = %q", got)
	}
	if got := Placeholders(0); got != "" {
		t.Fatalf("Placeholders(0) = %q", got)
	}
	if got := LikeEscape(`10%_off\`); got != `10\%\_off\\` {
		t.Fatalf("LikeEscape = %q", got)
	}
	if !IsDuplicateKey(&mysql.MySQLError{Number: 1062}) || IsDuplicateKey(&mysql.MySQLError{Number: 1213}) {
		t.Fatal("IsDuplicateKey misclassified")
	}
}
