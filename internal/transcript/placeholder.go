package transcript

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viralscript/viralscript/internal/video"
)

var placeholderTranscripts = map[video.Platform]string{
	video.PlatformYouTube: "Este vídeo vai mudar sua forma de pensar sobre isso. " +
		"Nos últimos meses descobri um método incrível. " +
		"Vou mostrar os 3 passos que usei para conseguir resultados. " +
		"Link na descrição para saber mais detalhes.",
	video.PlatformInstagram: "Você sabia que 80% das pessoas fazem isso errado? " +
		"Eu cometi esse erro por anos até descobrir esse método. " +
		"Agora minha vida mudou completamente. " +
		"Link na bio para saber mais.",
	video.PlatformTikTok: "Espera, você ainda não sabe disso? " +
		"Isso vai mudar tudo pra você. " +
		"Olha só o que acontece quando você faz assim. " +
		"Resultado incrível em apenas 7 dias. " +
		"Corre lá no link da bio!",
}

// PlaceholderSource returns a static transcript per platform. It stands in for
// platforms that have no extraction integration yet.
type PlaceholderSource struct{}

func NewPlaceholderSource() *PlaceholderSource {
	return &PlaceholderSource{}
}

func (s *PlaceholderSource) Fetch(_ context.Context, ref video.Reference) (string, error) {
	text, ok := placeholderTranscripts[ref.Platform]
	if !ok {
		return "", fmt.Errorf("%w: no placeholder for platform %q", ErrTranscriptUnavailable, ref.Platform)
	}
	slog.Warn("using placeholder transcript", "platform", ref.Platform, "url", ref.URL)
	return text, nil
}
