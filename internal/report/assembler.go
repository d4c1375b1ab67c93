package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// Assembler builds the FinalReport from the score report and the optional
// advisory inputs. The score report is the deterministic part; emotion and
// summaries attach when available and are dropped on failure.
type Assembler struct {
	summarizer *Summarizer
	log        *logrus.Logger
}

func NewAssembler(summarizer *Summarizer, log *logrus.Logger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{summarizer: summarizer, log: log}
}

// Assemble produces the final deliverable. A summarizer failure is logged
// and the report ships without narratives; the score is never blocked on a
// narrative.
func (a *Assembler) Assemble(ctx context.Context, call *domain.Call, score *domain.ScoreReport, emotion *domain.CallEmotionSummary) *domain.FinalReport {
	final := &domain.FinalReport{
		Score:     score,
		Emotion:   emotion,
		CreatedAt: time.Now().UTC(),
	}

	if a.summarizer != nil && call.Transcript != nil {
		summaries, err := a.summarizer.Summarize(ctx, call.Transcript, score)
		if err != nil {
			a.log.WithField("call_id", call.ID).WithError(err).Warn("summary generation failed, shipping report without narratives")
		} else {
			final.Summaries = summaries
		}
	}

	return final
}
