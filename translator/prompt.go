package translator

import (
	"fmt"
	"strings"

	"novelweaver/models"
)

const (
	noPronounRules  = "No specific pronoun rules. Infer from context."
	noGlossaryTerms = "No specific glossary terms provided."
)

// BuildSystemPrompt assembles the translation instructions for one chapter.
// Pronoun entries get their own highest-priority section so the model keeps
// forms of address consistent across chapters.
func BuildSystemPrompt(config models.TranslationConfig, glossary []models.GlossaryItem) string {
	var pronounRules, termRules []string
	for _, g := range glossary {
		if g.Term == "" || g.Translation == "" {
			continue
		}
		if g.Type == models.GlossaryPronoun {
			pronounRules = append(pronounRules, fmt.Sprintf("- %q → %q", g.Term, g.Translation))
		} else {
			termRules = append(termRules, fmt.Sprintf("- %q → %q (%s)", g.Term, g.Translation, g.Type))
		}
	}

	pronounBlock := noPronounRules
	if len(pronounRules) > 0 {
		pronounBlock = strings.Join(pronounRules, "\n")
	}
	termBlock := noGlossaryTerms
	if len(termRules) > 0 {
		termBlock = strings.Join(termRules, "\n")
	}

	return fmt.Sprintf(`You are a professional literary translator specializing in web novels.
Your task is to translate the provided text from %s to %s.

CRITICAL INSTRUCTIONS:
1. Maintain the tone, style, and flow of the original story.
2. Adapt idioms and cultural references to be natural in the target language.
3. Output ONLY the translated text. Do not include notes or explanations unless absolutely necessary for cultural context (footnotes).

PRONOUN & ADDRESSING MAPPING (HIGHEST PRIORITY):
Handle these pronouns and forms of address strictly to maintain character voice and social hierarchy:
%s

GLOSSARY TERMS:
Strictly use these translations for specific terms/names:
%s

GENERAL RULES:
- If a term in the glossary appears, use the provided translation.
- For pronouns not listed, use context to determine appropriate gender and hierarchy (e.g. polite vs casual).`,
		config.SourceLang, config.TargetLang, pronounBlock, termBlock)
}

// BuildPrompt appends the source text to the system prompt.
func BuildPrompt(config models.TranslationConfig, glossary []models.GlossaryItem, text string) string {
	return BuildSystemPrompt(config, glossary) + "\n\n---\n\nOriginal Text:\n" + text
}
