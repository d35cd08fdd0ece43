package models

import "github.com/mamadbah2/livestock/internal/domain/schema"

const CollectionUsers = "users"

// User is an account holder. Users are the owners of every other record and
// are not owner-scoped themselves; the password hash is managed by the auth
// service outside this schema.
var User = &schema.Schema{
	Label:      "User",
	Collection: CollectionUsers,
	Fields: []schema.Field{
		schema.Text("name").Required(),
		schema.Email("email").Required(),
		schema.Text("phoneNumber"),
	},
}
