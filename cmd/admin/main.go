package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/db"
	"github.com/midia-hub/saraalagoas-sub008/internal/repo"
	"github.com/midia-hub/saraalagoas-sub008/internal/service"
)

// noopCache satisfaz o serviço de usuários fora do processo da API, onde
// não há cache de acesso para invalidar.
type noopCache struct{}

func (noopCache) InvalidarCache(ctx context.Context, usuarioID uuid.UUID) {}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	usuarios := service.NewUsuarioService(repo.NewQueries(pool), noopCache{})

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, usuarios, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar usuário")
		}
	case "list":
		if err := runList(ctx, usuarios); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar usuários")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "admin CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  admin create --nome \"Maria Souza\" --email maria@saraalagoas.com --senha segredo123 [--admin]")
	fmt.Fprintln(os.Stderr, "  admin list")
}

func runCreate(ctx context.Context, usuarios *service.UsuarioService, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome  = fs.String("nome", "", "nome exibido")
		email = fs.String("email", "", "email de login")
		senha = fs.String("senha", "", "senha inicial")
		admin = fs.Bool("admin", false, "concede acesso total ao painel")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *nome == "" || *email == "" || *senha == "" {
		return errors.New("nome, email e senha são obrigatórios")
	}

	criado, err := usuarios.CreateUsuario(ctx, *nome, *email, *senha, nil, *admin)
	if err != nil {
		return err
	}

	fmt.Printf("usuário criado: %s (%s)\n", criado.Nome, criado.ID)
	return nil
}

func runList(ctx context.Context, usuarios *service.UsuarioService) error {
	lista, err := usuarios.ListUsuarios(ctx)
	if err != nil {
		return err
	}

	if len(lista) == 0 {
		fmt.Println("nenhum usuário cadastrado")
		return nil
	}

	type linha struct {
		ID    uuid.UUID `json:"id"`
		Nome  string    `json:"nome"`
		Email string    `json:"email"`
		Admin bool      `json:"admin"`
		Ativo bool      `json:"ativo"`
	}
	linhas := make([]linha, 0, len(lista))
	for _, u := range lista {
		linhas = append(linhas, linha{ID: u.ID, Nome: u.Nome, Email: u.Email, Admin: u.Admin, Ativo: u.Ativo})
	}

	encoded, _ := json.MarshalIndent(linhas, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
