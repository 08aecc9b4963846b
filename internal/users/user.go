package users

import "fmt"

// User represents a row in the users table.
// ID is zero until the user has been inserted.
type User struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Age  int    `db:"age"`
}

// NewUser creates an unpersisted user.
func NewUser(name string, age int) *User {
	return &User{Name: name, Age: age}
}

// Persisted reports whether the store has assigned an ID.
func (u *User) Persisted() bool {
	return u != nil && u.ID != 0
}

func (u *User) String() string {
	return fmt.Sprintf("%s is %d with id %d", u.Name, u.Age, u.ID)
}
