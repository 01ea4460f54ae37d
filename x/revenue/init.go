package revenue

import (
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ datamarket.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial configuration from genesis and save it in
// the database.
func (*Initializer) FromGenesis(opts datamarket.Options, db datamarket.KVStore) error {
	return gconf.InitConfig(db, opts, "revenue", &Configuration{})
}
