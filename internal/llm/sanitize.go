// Package llm contiene el texto que cruza la frontera con el LLM:
// sanitización de input no confiable de los venues y las plantillas de
// prompt. No hace transporte; eso es de los adapters.
package llm

// sanitize.go — defensa contra prompt injection vía datos de venue.
//
// Todo texto que venga de los APIs de Kalshi/Polymarket es input NO
// confiable: un listing malicioso puede incrustar payloads de override
// de instrucciones en títulos o descripciones. Capas: stripping de
// patrones conocidos, truncado de longitud y filtrado de caracteres de
// control.

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// injectionPatterns son señales de intento de override de instrucciones.
// Compilados una vez al cargar el paquete.
var injectionPatterns = []*regexp.Regexp{
	// Hijack de rol / persona
	regexp.MustCompile(`(?i)\b(you\s+are|act\s+as|pretend\s+to\s+be|role[\s-]*play)\b`),
	// Overrides del system prompt
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|above|prior)\s+(instructions|prompts?|context)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|above|prior)`),
	regexp.MustCompile(`(?i)new\s+instructions?:`),
	regexp.MustCompile(`(?i)(system\s*prompt|<<\s*SYS|<\|system\|>|\[INST\])`),
	// Injection de delimitadores
	regexp.MustCompile(`(?i)---+\s*(end|begin|system|instructions?)`),
	regexp.MustCompile("(?i)```" + `\s*(system|instructions?|prompt)`),
	// Manipulación del output
	regexp.MustCompile(`(?i)(respond\s+with|output\s+only|return\s+the\s+following)`),
	regexp.MustCompile(`(?i)do\s+not\s+(mention|reveal|disclose|discuss)`),
	// Smuggling por base64
	regexp.MustCompile(`(?i)base64[\s:]+[A-Za-z0-9+/=]{20,}`),
}

// SanitizeText limpia un campo de texto de un API externo: strippea
// patrones de injection, filtra caracteres de control y trunca a
// maxLength. Devuelve "" para input vacío.
func SanitizeText(text string, maxLength int) string {
	if text == "" {
		return ""
	}

	clean := text
	for _, p := range injectionPatterns {
		clean = p.ReplaceAllString(clean, " ")
	}

	var sb strings.Builder
	sb.Grow(len(clean))
	for _, r := range clean {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	clean = strings.TrimSpace(collapseSpaces(sb.String()))

	if maxLength > 0 && len(clean) > maxLength {
		clean = truncateRunes(clean, maxLength)
	}
	return clean
}

// truncateRunes corta a como mucho max bytes sin partir un rune
// multi-byte: el corte retrocede hasta el arranque del rune anterior.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// SanitizeForPrompt es SanitizeText más el escape de marcadores
// estructurales, para texto que se interpola directo en una plantilla.
func SanitizeForPrompt(text string, maxLength int) string {
	clean := SanitizeText(text, maxLength)
	replacer := strings.NewReplacer(
		"{", "(", "}", ")",
		"[", "(", "]", ")",
		"`", "'", "|", "/",
	)
	return replacer.Replace(clean)
}

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

func collapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(s, " ")
}
