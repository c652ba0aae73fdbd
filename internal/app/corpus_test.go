package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// legalTopics gives each document a signature phrase that no other
// document shares, so retrieval of the phrase must surface its source.
var legalTopics = []struct {
	file      string
	signature string
	body      string
}{
	{"lease.txt", "Landlord repairs structural defects", "Residential tenancies impose obligations on both parties."},
	{"bail.txt", "Bail conditions restrict travel", "A magistrate may release an accused person pending trial."},
	{"patent.md", "Patent claims define invention scope", "Examiners compare prior art against each independent claim."},
	{"divorce.txt", "Spousal maintenance follows dissolution", "Family courts divide matrimonial property equitably."},
	{"probate/wills.txt", "Testator signatures require witnesses", "Executors administer estates according to valid testaments."},
	{"probate/intestacy.txt", "Intestate estates pass to kin", "Statutory schemes rank surviving relatives by proximity."},
	{"employment.md", "Wrongful dismissal attracts compensation", "Employers must follow fair procedures before termination."},
	{"privacy.txt", "Personal data needs lawful basis", "Controllers document processing purposes and retention periods."},
	{"contracts/offer.txt", "Acceptance mirrors offer terms", "Counteroffers extinguish earlier proposals between negotiating merchants."},
	{"contracts/remedies.txt", "Liquidated damages must estimate loss", "Penalty clauses are unenforceable when extravagant."},
	{"tax.md", "Capital gains arise on disposal", "Revenue authorities assess chargeable assets annually."},
	{"maritime.txt", "Salvors earn awards for rescue", "Admiralty jurisdiction covers vessels cargo and crews."},
}

func writeLegalCorpus(t *testing.T, dir string) {
	t.Helper()
	for _, topic := range legalTopics {
		path := filepath.Join(dir, topic.file)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		content := fmt.Sprintf("%s. %s", topic.signature, topic.body)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBootstrap_legalCorpusRetrieval(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "legal-docs")
	writeLegalCorpus(t, corpus)

	cfg := &config.Config{
		Corpus:     config.CorpusConfig{Directories: []string{corpus}},
		Embedding:  config.EmbeddingConfig{Provider: config.ProviderMock, Dimensions: 256},
		Generation: config.GenerationConfig{Provider: config.ProviderExtractive},
		Storage:    config.StorageConfig{Disabled: true},
	}
	config.ApplyDefaults(cfg)

	c, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	report, err := c.Bootstrap(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Documents != len(legalTopics) {
		t.Fatalf("documents = %d, want %d", report.Documents, len(legalTopics))
	}
	// Default windows are far larger than any document: one chunk each.
	if report.Chunks != len(legalTopics) {
		t.Errorf("chunks = %d, want %d", report.Chunks, len(legalTopics))
	}

	for _, topic := range legalTopics {
		t.Run(topic.file, func(t *testing.T) {
			resp, err := c.Engine.Retrieve(ctx, &models.AskRequest{Query: topic.signature, TopK: 3})
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Results) != 3 {
				t.Fatalf("results = %d, want 3", len(resp.Results))
			}
			if !strings.HasPrefix(resp.Results[0].Text, topic.signature) {
				t.Errorf("top result for %q = %q", topic.signature, resp.Results[0].Text)
			}
			for i := 1; i < len(resp.Results); i++ {
				if resp.Results[i].Similarity > resp.Results[i-1].Similarity {
					t.Errorf("results not in descending order: %v", resp.Results)
				}
			}

			answer, err := c.Engine.Ask(ctx, &models.AskRequest{Query: topic.signature, TopK: 1})
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(answer, topic.signature) {
				t.Errorf("answer %q does not quote its source", answer)
			}
		})
	}
}
