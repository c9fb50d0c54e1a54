package rbac

import (
	"testing"

	"github.com/google/uuid"
)

func TestPodeAdminLiberaTudo(t *testing.T) {
	snap := &Snapshot{UsuarioID: uuid.New(), Admin: true}

	paginas := []string{PaginaCelulas, PaginaLivrariaPDV, "pagina_que_nao_existe"}
	acoes := []Acao{AcaoVisualizar, AcaoCriar, AcaoEditar, AcaoExcluir, AcaoGerenciar}

	for _, pagina := range paginas {
		for _, acao := range acoes {
			if !snap.Pode(pagina, acao) {
				t.Fatalf("admin deveria poder %s em %s", acao, pagina)
			}
		}
	}

	if !snap.TemCodigo("qualquer_codigo") {
		t.Fatal("admin deveria ter qualquer código nomeado")
	}
}

func TestPodeGradeVaziaNegaTudo(t *testing.T) {
	snap := &Snapshot{UsuarioID: uuid.New(), Permissoes: GradePermissoes{}}

	for _, pagina := range []string{PaginaPessoas, PaginaCelulas, "x"} {
		for _, acao := range []Acao{AcaoVisualizar, AcaoCriar, AcaoEditar, AcaoExcluir, AcaoGerenciar} {
			if snap.Pode(pagina, acao) {
				t.Fatalf("grade vazia não deveria liberar %s em %s", acao, pagina)
			}
		}
	}
}

func TestPodeSegueGrade(t *testing.T) {
	snap := &Snapshot{
		UsuarioID: uuid.New(),
		Permissoes: GradePermissoes{
			"x": {AcaoEditar: {}},
		},
	}

	if !snap.Pode("x", AcaoEditar) {
		t.Fatal("edit presente na grade deveria liberar")
	}
	if snap.Pode("x", AcaoExcluir) {
		t.Fatal("delete ausente da grade não deveria liberar")
	}
	if snap.Pode("y", AcaoEditar) {
		t.Fatal("página ausente da grade não deveria liberar")
	}
}

func TestPodeSnapshotNulo(t *testing.T) {
	var snap *Snapshot
	if snap.Pode(PaginaCelulas, AcaoVisualizar) {
		t.Fatal("snapshot nulo deveria negar")
	}
	if snap.TemCodigo(CodigoAprovarPD) {
		t.Fatal("snapshot nulo não deveria ter código")
	}
}

func TestTemCodigoEhEixoSeparado(t *testing.T) {
	snap := &Snapshot{
		UsuarioID: uuid.New(),
		Permissoes: GradePermissoes{
			PaginaCelulas: {AcaoEditar: {}},
		},
		Codigos: map[string]struct{}{},
	}

	// edit na página não concede o código nomeado
	if snap.TemCodigo(CodigoAprovarPD) {
		t.Fatal("edit genérico não deveria implicar aprovar_pd")
	}

	snap.Codigos[CodigoAprovarPD] = struct{}{}
	if !snap.TemCodigo(CodigoAprovarPD) {
		t.Fatal("código concedido deveria estar presente")
	}
}

func TestMontarSnapshotNormaliza(t *testing.T) {
	id := uuid.New()
	snap := montarSnapshot(id, Acesso{
		Nome:  "Maria",
		Email: "maria@example.com",
		Papel: "Secretária",
		Permissoes: []PermissaoConcedida{
			{Pagina: PaginaCelulas, Acao: "view"},
			{Pagina: PaginaCelulas, Acao: "edit"},
			{Pagina: "  ", Acao: "view"},
		},
		Codigos: []string{CodigoAprovarPD, " "},
	})

	if snap.UsuarioID != id {
		t.Fatal("usuário trocado")
	}
	if !snap.AcessoAdmin {
		t.Fatal("grade não vazia deveria liberar acesso ao painel")
	}
	if !snap.Pode(PaginaCelulas, AcaoEditar) || !snap.Pode(PaginaCelulas, AcaoVisualizar) {
		t.Fatal("grade não montada")
	}
	if len(snap.Permissoes) != 1 {
		t.Fatalf("página em branco deveria ser descartada, grade tem %d entradas", len(snap.Permissoes))
	}
	if !snap.TemCodigo(CodigoAprovarPD) {
		t.Fatal("código não montado")
	}
	if len(snap.Codigos) != 1 {
		t.Fatal("código em branco deveria ser descartado")
	}
}

func TestMontarSnapshotSemGradeNaoAcessaPainel(t *testing.T) {
	snap := montarSnapshot(uuid.New(), Acesso{Nome: "João", Email: "joao@example.com"})
	if snap.AcessoAdmin {
		t.Fatal("sem grade e sem admin não deveria acessar o painel")
	}
}
