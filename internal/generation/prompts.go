package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viralscript/viralscript/internal/video"
)

func buildAnalysisPrompt(videos []video.Transcribed) string {
	var refs strings.Builder
	for i, v := range videos {
		fmt.Fprintf(&refs, "\nVÍDEO %d (%s):\n%s\n---\n", i+1, strings.ToUpper(string(v.Platform)), v.Transcription)
	}
	n := len(videos)

	return fmt.Sprintf(`Você é um especialista em análise de copywriting para vídeos virais de alta conversão.

VÍDEOS DE REFERÊNCIA:
%s
TAREFA:
Analise esses %d vídeos e identifique os padrões vencedores.

Para cada categoria abaixo, identifique:

1. GANCHOS (primeiros 3-7 segundos):
   - Tipos predominantes (pergunta, estatística, controvérsia, afirmação chocante, história)
   - Frequência de cada tipo
   - Duração média em segundos
   - Até 3 exemplos mais impactantes

2. CORPO (desenvolvimento do conteúdo):
   - Estrutura narrativa dominante (problema-agitação-solução, storytelling, lista de pontos, etc)
   - Número médio de pontos/argumentos principais
   - Elementos de persuasão comuns (prova social, escassez, autoridade, dados)

3. CTA (call-to-action):
   - Tipo dominante (direto, suave, urgência, curiosidade)
   - Posicionamento médio (ex: "últimos 5-7s")
   - Até 3 exemplos mais efetivos

RETORNE APENAS um objeto JSON válido no seguinte formato (sem markdown, sem explicações):

{
  "videos_analisados": %d,
  "padroes_ganchos": [
    {
      "tipo": "pergunta_provocativa",
      "frequencia": "3/%d",
      "duracao_media_segundos": 4.5,
      "exemplos": ["exemplo 1", "exemplo 2"]
    }
  ],
  "padroes_corpo": {
    "estrutura_dominante": "problema-agitacao-solucao",
    "num_pontos_medio": 3,
    "elementos_comuns": ["storytelling", "prova_social", "dados"]
  },
  "padroes_cta": {
    "tipo_dominante": "urgencia",
    "posicionamento_medio": "ultimos_5-7s",
    "exemplos": ["exemplo 1", "exemplo 2"]
  }
}`, refs.String(), n, n, n)
}

func buildGenerationPrompt(analysis *Analysis, theme ThemeInput, settings Settings) (string, error) {
	patterns, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling analysis for prompt: %w", err)
	}

	var subject strings.Builder
	if theme.Type == ThemeLink {
		subject.WriteString("Link: ")
	}
	subject.WriteString(strings.TrimSpace(theme.Content))
	if theme.TargetAudience != "" {
		fmt.Fprintf(&subject, "\nPúblico-alvo: %s", theme.TargetAudience)
	}
	if theme.Objective != "" {
		fmt.Fprintf(&subject, "\nObjetivo: %s", theme.Objective)
	}

	n := settings.VariationCount
	return fmt.Sprintf(`Você é um copywriter expert em criar roteiros de vídeos de alta conversão.

PADRÕES VENCEDORES IDENTIFICADOS:
%s

NOVO PRODUTO/TEMA:
%s

CONFIGURAÇÕES:
- Duração desejada: %s
- Plataforma principal: %s
- Número de variações: %d

TAREFA:
Crie %d roteiros DIFERENTES aplicando os padrões vencedores identificados.

REGRAS OBRIGATÓRIAS:
1. Cada roteiro deve ter um ângulo/abordagem único
2. MANTENHA a estrutura vencedora (tipo de gancho → estrutura de corpo → tipo de CTA)
3. Adapte o timing conforme duração solicitada
4. Use linguagem apropriada para %s
5. Pontue cada roteiro (0-10) baseado na aderência aos padrões vencedores
6. Calcule a duração estimada em segundos
7. Identifique as plataformas recomendadas para cada roteiro (instagram, tiktok, youtube)

FORMATO DE CADA ROTEIRO:
- numero: 1, 2, 3...
- titulo: Título criativo e descritivo (ex: "Pergunta Provocativa + Urgência")
- score_aderencia: número de 0 a 10
- duracao_estimada_segundos: número
- plataformas_recomendadas: array de plataformas
- gancho: { texto, timing, tipo }
- corpo: { texto, timing, estrutura, pontos_principais: array }
- cta: { texto, timing, tipo }
- notas_criacao: breve explicação de por que este roteiro funciona

RETORNE APENAS um array JSON válido com %d roteiros (sem markdown, sem explicações):

[
  {
    "id": "rot-1",
    "numero": 1,
    "titulo": "...",
    ...
  }
]`, patterns, subject.String(), settings.VideoDuration, settings.Platform, n, n, settings.Platform, n), nil
}
