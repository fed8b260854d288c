package token

var keywords = map[string]Kind{
	"fn":     KwFn,
	"if":     KwIf,
	"elif":   KwElif,
	"else":   KwElse,
	"while":  KwWhile,
	"break":  KwBreak,
	"return": KwReturn,
	"true":   KwTrue,
	"false":  KwFalse,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
