package auth

import (
	"github.com/alexedwards/argon2id"
)

// Parâmetros Argon2id usados para senhas de colaboradores do painel.
var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // KiB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera um hash Argon2id (os parâmetros ficam embutidos no hash).
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, argonParams)
}

// Verify compara a senha com o hash Argon2id armazenado.
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}
