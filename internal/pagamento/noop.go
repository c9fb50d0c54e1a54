package pagamento

import (
	"context"
	"errors"
)

var errNaoConfigurado = errors.New("provedor de pagamentos não configurado")

// CobradorIndisponivel é usado quando o PDV roda sem credenciais do
// provedor. Toda tentativa de cobrança falha com erro claro.
type CobradorIndisponivel struct{}

func (CobradorIndisponivel) CriarCobranca(ctx context.Context, pedido NovaCobranca) (Cobranca, error) {
	return Cobranca{}, errNaoConfigurado
}

func (CobradorIndisponivel) ConsultarCobranca(ctx context.Context, id string) (Cobranca, error) {
	return Cobranca{}, errNaoConfigurado
}

func (CobradorIndisponivel) EstornarCobranca(ctx context.Context, id string) (Cobranca, error) {
	return Cobranca{}, errNaoConfigurado
}
