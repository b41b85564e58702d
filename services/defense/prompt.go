package defense

import (
	"fmt"
	"strings"

	"finehero/models"
)

// BuildQuery condenses the extracted fine fields into the retrieval query
// used against the legal knowledge base.
func BuildQuery(data *models.FineData) string {
	var parts []string
	if data.Article != "" {
		parts = append(parts, "artigo "+data.Article+" Código da Estrada")
	}
	if data.Authority != "" {
		parts = append(parts, data.Authority)
	}
	if data.Location != "" {
		parts = append(parts, data.Location)
	}
	if data.AmountCents > 0 {
		parts = append(parts, fmt.Sprintf("coima %s", FormatEuros(data.AmountCents)))
	}
	if data.Points > 0 {
		parts = append(parts, fmt.Sprintf("%d pontos", data.Points))
	}
	if len(parts) == 0 {
		parts = append(parts, "contraordenação rodoviária contestação")
	}
	return strings.Join(parts, ", ")
}

// BuildPrompt assembles the generation prompt: infraction data, retrieved
// legal grounds, and writing instructions, all in Portuguese.
func BuildPrompt(data *models.FineData, retrieved []models.RetrievedChunk) string {
	var sb strings.Builder

	sb.WriteString("És um jurista especializado em contraordenações rodoviárias portuguesas. ")
	sb.WriteString("Redige uma carta de defesa formal, em português europeu, para contestar a seguinte infração.\n\n")

	sb.WriteString("## DADOS DA INFRAÇÃO\n")
	writeField(&sb, "Auto de contraordenação", data.NoticeNumber)
	writeField(&sb, "Artigo imputado", data.Article)
	writeField(&sb, "Data", data.Date)
	writeField(&sb, "Hora", data.Time)
	writeField(&sb, "Local", data.Location)
	writeField(&sb, "Matrícula", data.Plate)
	if data.AmountCents > 0 {
		writeField(&sb, "Valor da coima", FormatEuros(data.AmountCents))
	}
	writeField(&sb, "Entidade autuante", data.Authority)
	if data.Points > 0 {
		writeField(&sb, "Pontos", fmt.Sprintf("%d", data.Points))
	}

	sb.WriteString("\n## FUNDAMENTOS LEGAIS\n")
	if len(retrieved) == 0 {
		sb.WriteString("Sem excertos recuperados; fundamenta apenas em princípios gerais do regime contraordenacional.\n")
	} else {
		for _, r := range retrieved {
			fmt.Fprintf(&sb, "### %s, artigo %s", r.Article.Code, r.Article.Article)
			if r.Article.Title != "" {
				fmt.Fprintf(&sb, " — %s", r.Article.Title)
			}
			sb.WriteString("\n")
			sb.WriteString(r.Chunk.Text)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("## INSTRUÇÕES\n")
	sb.WriteString("- Estrutura: identificação do arguido (usa marcadores [NOME], [MORADA], [NIF]), ")
	sb.WriteString("exposição dos factos, fundamentos de direito citando os artigos acima, pedido final.\n")
	sb.WriteString("- Cita exclusivamente os artigos fornecidos na secção FUNDAMENTOS LEGAIS.\n")
	sb.WriteString("- Tom formal e objetivo; não inventes factos que não constem dos dados.\n")
	sb.WriteString("- Responde apenas com a carta, em Markdown.\n")

	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, value)
}

// FormatEuros renders integer cents in Portuguese notation, e.g. "120,00 €".
func FormatEuros(cents int64) string {
	return fmt.Sprintf("%d,%02d €", cents/100, cents%100)
}
