package livraria

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/midia-hub/saraalagoas-sub008/internal/pagamento"
)

type stubRepo struct {
	produtos map[uuid.UUID]Produto
	vendas   map[uuid.UUID]Venda
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		produtos: map[uuid.UUID]Produto{},
		vendas:   map[uuid.UUID]Venda{},
	}
}

func (s *stubRepo) ListProdutos(_ context.Context, somenteAtivos bool) ([]Produto, error) {
	var out []Produto
	for _, p := range s.produtos {
		if !somenteAtivos || p.Ativo {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) GetProduto(_ context.Context, id uuid.UUID) (Produto, error) {
	p, ok := s.produtos[id]
	if !ok {
		return Produto{}, errNaoEncontrado
	}
	return p, nil
}

func (s *stubRepo) CreateProduto(_ context.Context, p Produto) (Produto, error) {
	p.ID = uuid.New()
	s.produtos[p.ID] = p
	return p, nil
}

func (s *stubRepo) UpdateProduto(_ context.Context, p Produto) error {
	if _, ok := s.produtos[p.ID]; !ok {
		return errNaoEncontrado
	}
	s.produtos[p.ID] = p
	return nil
}

func (s *stubRepo) CreateVenda(_ context.Context, v Venda) (Venda, error) {
	for _, item := range v.Itens {
		p, ok := s.produtos[item.ProdutoID]
		if !ok || !p.Ativo || p.Estoque < item.Quantidade {
			return Venda{}, errSemEstoque
		}
	}
	for _, item := range v.Itens {
		p := s.produtos[item.ProdutoID]
		p.Estoque -= item.Quantidade
		s.produtos[item.ProdutoID] = p
	}
	v.ID = uuid.New()
	s.vendas[v.ID] = v
	return v, nil
}

func (s *stubRepo) GetVenda(_ context.Context, id uuid.UUID) (Venda, error) {
	v, ok := s.vendas[id]
	if !ok {
		return Venda{}, errNaoEncontrado
	}
	return v, nil
}

func (s *stubRepo) GetVendaPorCobranca(_ context.Context, cobrancaID string) (Venda, error) {
	for _, v := range s.vendas {
		if v.CobrancaID != nil && *v.CobrancaID == cobrancaID {
			return v, nil
		}
	}
	return Venda{}, errNaoEncontrado
}

func (s *stubRepo) UpdateCobranca(_ context.Context, vendaID uuid.UUID, cobrancaID string) error {
	v, ok := s.vendas[vendaID]
	if !ok {
		return errNaoEncontrado
	}
	v.CobrancaID = &cobrancaID
	s.vendas[vendaID] = v
	return nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, vendaID uuid.UUID, status StatusVenda) error {
	v, ok := s.vendas[vendaID]
	if !ok {
		return errNaoEncontrado
	}
	v.Status = status
	s.vendas[vendaID] = v
	return nil
}

func (s *stubRepo) DevolverEstoque(_ context.Context, itens []ItemVenda) error {
	for _, item := range itens {
		p := s.produtos[item.ProdutoID]
		p.Estoque += item.Quantidade
		s.produtos[item.ProdutoID] = p
	}
	return nil
}

type stubCobrador struct {
	falhar    bool
	cobrancas int
	estornos  int
}

func (s *stubCobrador) CriarCobranca(_ context.Context, pedido pagamento.NovaCobranca) (pagamento.Cobranca, error) {
	if s.falhar {
		return pagamento.Cobranca{}, errors.New("provedor indisponível")
	}
	s.cobrancas++
	return pagamento.Cobranca{ID: "cob-1", Status: pagamento.CobrancaPendente, ValorCents: pedido.ValorCents}, nil
}

func (s *stubCobrador) ConsultarCobranca(_ context.Context, id string) (pagamento.Cobranca, error) {
	return pagamento.Cobranca{ID: id}, nil
}

func (s *stubCobrador) EstornarCobranca(_ context.Context, id string) (pagamento.Cobranca, error) {
	s.estornos++
	return pagamento.Cobranca{ID: id, Status: pagamento.CobrancaEstornada}, nil
}

func montarCatalogo(t *testing.T, repo *stubRepo) Produto {
	t.Helper()
	p, err := repo.CreateProduto(context.Background(), Produto{Titulo: "Bíblia de Estudo", PrecoCents: 8990, Estoque: 3, Ativo: true})
	if err != nil {
		t.Fatalf("criar produto: %v", err)
	}
	return p
}

func TestVenderBaixaEstoqueEEmiteRecibo(t *testing.T) {
	repo := newStubRepo()
	cobrador := &stubCobrador{}
	svc := NewService(repo, cobrador)
	produto := montarCatalogo(t, repo)

	venda, err := svc.Vender(context.Background(), []ItemPedido{{ProdutoID: produto.ID, Quantidade: 2}})
	if err != nil {
		t.Fatalf("vender: %v", err)
	}
	if venda.Recibo == "" {
		t.Fatal("venda sem recibo")
	}
	if venda.TotalCents != 2*8990 {
		t.Fatalf("total = %d, esperado %d", venda.TotalCents, 2*8990)
	}
	if venda.CobrancaID == nil || *venda.CobrancaID != "cob-1" {
		t.Fatalf("cobrança não vinculada: %+v", venda.CobrancaID)
	}
	if restante := repo.produtos[produto.ID].Estoque; restante != 1 {
		t.Fatalf("estoque = %d, esperado 1", restante)
	}
}

func TestVenderSemEstoqueRetornaConflito(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubCobrador{})
	produto := montarCatalogo(t, repo)

	_, err := svc.Vender(context.Background(), []ItemPedido{{ProdutoID: produto.ID, Quantidade: 5}})
	if !errors.Is(err, ErrEstoqueInsuficiente) {
		t.Fatalf("err = %v, esperado ErrEstoqueInsuficiente", err)
	}
	if restante := repo.produtos[produto.ID].Estoque; restante != 3 {
		t.Fatalf("estoque alterado para %d em venda recusada", restante)
	}
}

func TestVenderComProvedorForaDoArDevolveEstoque(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubCobrador{falhar: true})
	produto := montarCatalogo(t, repo)

	_, err := svc.Vender(context.Background(), []ItemPedido{{ProdutoID: produto.ID, Quantidade: 2}})
	if err == nil {
		t.Fatal("esperava erro do provedor")
	}
	if restante := repo.produtos[produto.ID].Estoque; restante != 3 {
		t.Fatalf("estoque = %d, esperado 3 após devolução", restante)
	}
}

func TestConfirmarPagamentoIdempotente(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubCobrador{})
	produto := montarCatalogo(t, repo)

	venda, err := svc.Vender(context.Background(), []ItemPedido{{ProdutoID: produto.ID, Quantidade: 1}})
	if err != nil {
		t.Fatalf("vender: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.ConfirmarPagamento(context.Background(), *venda.CobrancaID); err != nil {
			t.Fatalf("confirmar %d: %v", i, err)
		}
	}
	if status := repo.vendas[venda.ID].Status; status != VendaPaga {
		t.Fatalf("status = %s, esperado %s", status, VendaPaga)
	}
}

func TestEstornarExigeVendaPaga(t *testing.T) {
	repo := newStubRepo()
	cobrador := &stubCobrador{}
	svc := NewService(repo, cobrador)
	produto := montarCatalogo(t, repo)

	venda, err := svc.Vender(context.Background(), []ItemPedido{{ProdutoID: produto.ID, Quantidade: 2}})
	if err != nil {
		t.Fatalf("vender: %v", err)
	}

	if _, err := svc.Estornar(context.Background(), venda.ID); !errors.Is(err, ErrVendaNaoPaga) {
		t.Fatalf("err = %v, esperado ErrVendaNaoPaga", err)
	}

	if err := svc.ConfirmarPagamento(context.Background(), *venda.CobrancaID); err != nil {
		t.Fatalf("confirmar: %v", err)
	}
	estornada, err := svc.Estornar(context.Background(), venda.ID)
	if err != nil {
		t.Fatalf("estornar: %v", err)
	}
	if estornada.Status != VendaEstornada {
		t.Fatalf("status = %s, esperado %s", estornada.Status, VendaEstornada)
	}
	if cobrador.estornos != 1 {
		t.Fatalf("estornos no provedor = %d, esperado 1", cobrador.estornos)
	}
	if restante := repo.produtos[produto.ID].Estoque; restante != 3 {
		t.Fatalf("estoque = %d, esperado 3 após estorno", restante)
	}
}
