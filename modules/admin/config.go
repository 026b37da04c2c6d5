package admin

// Config holds the admin module credentials. When PasswordHash is empty the
// plain Password is bcrypt-hashed at startup, so the plaintext never sticks
// around past construction.
type Config struct {
	Username     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	Password     string `env:"ADMIN_PASSWORD" envDefault:"password"`
	PasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}
