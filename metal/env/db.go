package env

const DriverSqlite = "sqlite"
const DriverPostgres = "postgres"

type DBEnvironment struct {
	DriverName string `validate:"required,oneof=sqlite postgres"`
	DSN        string `validate:"required"`
}

func (e DBEnvironment) IsSqlite() bool {
	return e.DriverName == DriverSqlite
}
