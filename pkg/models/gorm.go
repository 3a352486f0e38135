package models

// ModelsToAutoMigrate lists the tables owned by the database provider.
func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&Workspace{},
		&Collection{},
		&Request{},
	}
}
