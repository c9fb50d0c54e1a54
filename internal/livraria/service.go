package livraria

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/pagamento"
	"github.com/midia-hub/saraalagoas-sub008/internal/util"
)

var (
	ErrNaoEncontrado       = errors.New("registro não encontrado")
	ErrEstoqueInsuficiente = errors.New("estoque insuficiente")
	ErrValidacao           = errors.New("dados inválidos")
	ErrVendaNaoPaga        = errors.New("venda não está paga")
)

// LivrariaRepository abstrai a persistência do PDV.
type LivrariaRepository interface {
	ListProdutos(ctx context.Context, somenteAtivos bool) ([]Produto, error)
	GetProduto(ctx context.Context, id uuid.UUID) (Produto, error)
	CreateProduto(ctx context.Context, p Produto) (Produto, error)
	UpdateProduto(ctx context.Context, p Produto) error
	CreateVenda(ctx context.Context, v Venda) (Venda, error)
	GetVenda(ctx context.Context, id uuid.UUID) (Venda, error)
	GetVendaPorCobranca(ctx context.Context, cobrancaID string) (Venda, error)
	UpdateCobranca(ctx context.Context, vendaID uuid.UUID, cobrancaID string) error
	UpdateStatus(ctx context.Context, vendaID uuid.UUID, status StatusVenda) error
	DevolverEstoque(ctx context.Context, itens []ItemVenda) error
}

type Service struct {
	repo     LivrariaRepository
	cobrador pagamento.Cobrador
}

func NewService(repo LivrariaRepository, cobrador pagamento.Cobrador) *Service {
	return &Service{repo: repo, cobrador: cobrador}
}

func (s *Service) ListarProdutos(ctx context.Context, somenteAtivos bool) ([]Produto, error) {
	produtos, err := s.repo.ListProdutos(ctx, somenteAtivos)
	if err != nil {
		return nil, err
	}
	if produtos == nil {
		produtos = []Produto{}
	}
	return produtos, nil
}

func (s *Service) CriarProduto(ctx context.Context, p Produto) (Produto, error) {
	p.Titulo = strings.TrimSpace(p.Titulo)
	if p.Titulo == "" || p.PrecoCents <= 0 || p.Estoque < 0 {
		return Produto{}, ErrValidacao
	}
	return s.repo.CreateProduto(ctx, p)
}

func (s *Service) AtualizarProduto(ctx context.Context, p Produto) (Produto, error) {
	p.Titulo = strings.TrimSpace(p.Titulo)
	if p.Titulo == "" || p.PrecoCents <= 0 || p.Estoque < 0 {
		return Produto{}, ErrValidacao
	}
	if err := s.repo.UpdateProduto(ctx, p); err != nil {
		return Produto{}, traduzirErro(err)
	}
	return p, nil
}

// ItemPedido é a entrada do carrinho, só produto e quantidade. O preço vem
// do catálogo no momento da venda.
type ItemPedido struct {
	ProdutoID  uuid.UUID `json:"produto_id"`
	Quantidade int       `json:"quantidade"`
}

// Vender registra a venda com baixa de estoque e abre a cobrança Pix. O
// recibo ULID é emitido antes da cobrança para que a venda exista mesmo se
// o provedor estiver fora do ar.
func (s *Service) Vender(ctx context.Context, pedido []ItemPedido) (Venda, error) {
	if len(pedido) == 0 {
		return Venda{}, ErrValidacao
	}

	venda := Venda{
		Recibo: util.NewULID(),
		Status: VendaAguardandoPagamento,
	}
	for _, item := range pedido {
		if item.Quantidade <= 0 {
			return Venda{}, ErrValidacao
		}
		produto, err := s.repo.GetProduto(ctx, item.ProdutoID)
		if err != nil {
			return Venda{}, traduzirErro(err)
		}
		venda.Itens = append(venda.Itens, ItemVenda{
			ProdutoID:      produto.ID,
			Quantidade:     item.Quantidade,
			PrecoUnitCents: produto.PrecoCents,
		})
		venda.TotalCents += produto.PrecoCents * int64(item.Quantidade)
	}

	criada, err := s.repo.CreateVenda(ctx, venda)
	if err != nil {
		if errors.Is(err, errSemEstoque) {
			return Venda{}, ErrEstoqueInsuficiente
		}
		return Venda{}, err
	}

	cobranca, err := s.cobrador.CriarCobranca(ctx, pagamento.NovaCobranca{
		ValorCents: criada.TotalCents,
		Descricao:  "Livraria Sara Alagoas",
		Referencia: criada.Recibo,
	})
	if err != nil {
		// A cobrança falhou; a venda não segue e o estoque volta.
		if derr := s.repo.DevolverEstoque(ctx, criada.Itens); derr != nil {
			log.Error().Err(derr).Str("venda", criada.ID.String()).Msg("livraria: falha ao devolver estoque")
		}
		if serr := s.repo.UpdateStatus(ctx, criada.ID, VendaFalha); serr != nil {
			log.Error().Err(serr).Str("venda", criada.ID.String()).Msg("livraria: falha ao marcar venda")
		}
		return Venda{}, err
	}

	if err := s.repo.UpdateCobranca(ctx, criada.ID, cobranca.ID); err != nil {
		return Venda{}, err
	}
	criada.CobrancaID = &cobranca.ID
	return criada, nil
}

func (s *Service) ObterVenda(ctx context.Context, id uuid.UUID) (Venda, error) {
	v, err := s.repo.GetVenda(ctx, id)
	if err != nil {
		return Venda{}, traduzirErro(err)
	}
	return v, nil
}

// ConfirmarPagamento é chamado pelo webhook do provedor.
func (s *Service) ConfirmarPagamento(ctx context.Context, cobrancaID string) error {
	v, err := s.repo.GetVendaPorCobranca(ctx, cobrancaID)
	if err != nil {
		return traduzirErro(err)
	}
	if v.Status == VendaPaga {
		return nil
	}
	return s.repo.UpdateStatus(ctx, v.ID, VendaPaga)
}

// Estornar devolve o estoque e pede o estorno da cobrança ao provedor.
func (s *Service) Estornar(ctx context.Context, vendaID uuid.UUID) (Venda, error) {
	v, err := s.repo.GetVenda(ctx, vendaID)
	if err != nil {
		return Venda{}, traduzirErro(err)
	}
	if v.Status != VendaPaga {
		return Venda{}, ErrVendaNaoPaga
	}
	if v.CobrancaID != nil {
		if _, err := s.cobrador.EstornarCobranca(ctx, *v.CobrancaID); err != nil {
			return Venda{}, err
		}
	}
	if err := s.repo.DevolverEstoque(ctx, v.Itens); err != nil {
		return Venda{}, err
	}
	if err := s.repo.UpdateStatus(ctx, v.ID, VendaEstornada); err != nil {
		return Venda{}, err
	}
	v.Status = VendaEstornada
	return v, nil
}

func traduzirErro(err error) error {
	if errors.Is(err, errNaoEncontrado) {
		return ErrNaoEncontrado
	}
	return err
}
