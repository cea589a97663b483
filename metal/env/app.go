package env

type EnvType string

const (
	Local      EnvType = "local"
	Staging    EnvType = "staging"
	Production EnvType = "production"
)

type AppEnvironment struct {
	Name string `validate:"required,min=4"`
	Type string `validate:"required,lowercase,oneof=local production staging"`
}

func (e AppEnvironment) is(t EnvType) bool {
	return EnvType(e.Type) == t
}

func (e AppEnvironment) IsProduction() bool { return e.is(Production) }
func (e AppEnvironment) IsStaging() bool    { return e.is(Staging) }
func (e AppEnvironment) IsLocal() bool      { return e.is(Local) }
