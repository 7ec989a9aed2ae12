// Package apierror provides the standardized error contract for the API.
// All errors returned to clients go through this package so that responses
// stay consistent and internal details (stack traces, driver errors) never
// leak. Every error carries a stable machine-readable code — clients branch
// on the code, never on the human-readable message.
package apierror

import "net/http"

// Stable error codes. These are part of the public API contract; renaming one
// is a breaking change for every client.
const (
	CodeValidacao            = "VALIDACAO"
	CodeCredenciaisInvalidas = "CREDENCIAIS_INVALIDAS"
	CodeNaoAutenticado       = "NAO_AUTENTICADO"
	CodeTokenMalformado      = "TOKEN_MALFORMADO"
	CodeTokenInvalido        = "TOKEN_INVALIDO"
	CodePermissaoNegada      = "PERMISSAO_NEGADA"
	CodeEmailJaCadastrado    = "EMAIL_JA_CADASTRADO"
	CodeCodigoJaCadastrado   = "CODIGO_JA_CADASTRADO"
	CodeCaixaJaAberto        = "CAIXA_JA_ABERTO"
	CodeCaixaNaoEncontrado   = "CAIXA_NAO_ENCONTRADO"
	CodeNaoEncontrado        = "NAO_ENCONTRADO"
	CodeEstoqueInsuficiente  = "ESTOQUE_INSUFICIENTE"
	CodeLimiteExcedido       = "LIMITE_EXCEDIDO"
	CodeErroInterno          = "ERRO_INTERNO"
)

// Error is the canonical API error. Services return it; handlers translate it
// to the HTTP layer via Status and the JSON envelope.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *Error) Error() string { return e.Message }

// New builds an arbitrary API error. Prefer the named constructors below.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// ─── Named constructors ──────────────────────────────────────────────────────

func Validacao(msg string) *Error {
	return New(http.StatusBadRequest, CodeValidacao, msg)
}

// CredenciaisInvalidas is intentionally identical for "no such user" and
// "wrong password" so the login endpoint cannot be used for enumeration.
func CredenciaisInvalidas() *Error {
	return New(http.StatusUnauthorized, CodeCredenciaisInvalidas, "Credenciais inválidas")
}

func NaoAutenticado() *Error {
	return New(http.StatusUnauthorized, CodeNaoAutenticado, "Token não fornecido")
}

func TokenMalformado() *Error {
	return New(http.StatusUnauthorized, CodeTokenMalformado, "Token mal formatado")
}

func TokenInvalido() *Error {
	return New(http.StatusUnauthorized, CodeTokenInvalido, "Token inválido ou expirado")
}

func PermissaoNegada() *Error {
	return New(http.StatusForbidden, CodePermissaoNegada, "Permissões insuficientes")
}

func EmailJaCadastrado() *Error {
	return New(http.StatusConflict, CodeEmailJaCadastrado, "Email já cadastrado")
}

func CodigoJaCadastrado() *Error {
	return New(http.StatusConflict, CodeCodigoJaCadastrado, "Código do produto já existe")
}

func CaixaJaAberto() *Error {
	return New(http.StatusBadRequest, CodeCaixaJaAberto, "Já existe um caixa aberto para este usuário")
}

func CaixaNaoEncontrado() *Error {
	return New(http.StatusNotFound, CodeCaixaNaoEncontrado, "Nenhum caixa aberto encontrado")
}

func NaoEncontrado(msg string) *Error {
	return New(http.StatusNotFound, CodeNaoEncontrado, msg)
}

func EstoqueInsuficiente() *Error {
	return New(http.StatusBadRequest, CodeEstoqueInsuficiente, "Estoque insuficiente para o ajuste")
}

// Interno is the only error shape a client ever sees for unexpected failures.
// The real cause is logged server-side.
func Interno() *Error {
	return New(http.StatusInternalServerError, CodeErroInterno, "Erro interno do servidor")
}

// Validation wraps per-field tag failures from the request validator.
type Validation struct {
	Code    string            `json:"code"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *Validation {
	return &Validation{Code: CodeValidacao, Message: "Erro de validação", Fields: fields}
}
