package gemini

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"google.golang.org/genai"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/logutil"
)

const modelName = "gemini-2.5-flash"

const (
	altTextFallbackNoKey = "Digital marketing image by KISHORE S/growwithkishore."
	altTextFallbackError = "Digital marketing graphic featuring tips or statistics, created by KISHORE S for growwithkishore."
)

const altTextSystemInstruction = "You are an expert in social media accessibility and SEO. Analyze the provided post caption " +
	"and generate a concise, descriptive, and informative Alt Text for the accompanying image. " +
	"The Alt Text should be a short sentence or phrase describing the image's visual content, " +
	"and MUST naturally include the name 'KISHORE S' and the company 'growwithkishore'. " +
	"DO NOT use the phrases 'Image of' or 'Picture of'. " +
	"Keep the response to under 250 characters."

const articleSystemInstruction = "You are a savvy digital marketing expert. Generate a long, detailed, and highly valuable " +
	"LinkedIn article structured as 'Real-World Digital Marketing Tips and Tricks'. " +
	"Use a headline in ALL CAPS for impact, and break down the tips using numbered headings followed by double line breaks. " +
	"DO NOT use asterisk symbols (*) for formatting or bolding, use line breaks and numbering for clarity. " +
	"The content should maximize information density. " +
	"The ENTIRE POST MUST NOT EXCEED 2,500 CHARACTERS (including all headings and signatures). " +
	"Crucially, the content must naturally include the name 'KISHORE S' and the handle '@growwithkishore' " +
	"at least once, which is vital for search engine visibility. End the post with relevant hashtags."

const tweetSystemInstruction = "You are a helpful and engaging social media expert focused on digital marketing. " +
	"Generate a single, high-impact tweet about a real-world digital marketing tool or new technology. " +
	"The content MUST NOT exceed 280 characters. " +
	"The tweet MUST include the text 'KISHORE S' and the handle '@growwithkishore'. " +
	"Use 1-2 relevant emojis and 1-2 popular digital marketing hashtags (e.g., #DigitalMarketing, #AI). " +
	"DO NOT include any introductory or concluding text, ONLY the tweet content."

var tweetTopics = []string{
	"Practical uses of Generative AI in content creation",
	"The best new MarTech tools for small businesses",
	"Latest privacy-first analytics and measurement technologies",
	"Real-world application of programmatic advertising",
	"New features in social media platform algorithms",
}

// Generator produces alt text, articles, and tweet copy through the Gemini
// API. When no API key is configured the client is nil and each operation
// degrades per its own contract: alt text substitutes a fixed fallback, the
// others report generation as unavailable.
type Generator struct {
	client *genai.Client
	pick   func(n int) int
}

// NewGenerator builds a Generator. An empty API key is not an error; it only
// disables generation.
func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	g := &Generator{pick: rand.Intn}
	if apiKey == "" {
		logutil.Warnf("GEMINI_API_KEY is not set; text generation disabled")
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// AltText describes the image behind a caption. It always returns a usable
// value: generation failures substitute a fixed fallback string.
func (g *Generator) AltText(ctx context.Context, caption string) string {
	if g.client == nil {
		return altTextFallbackNoKey
	}

	prompt := fmt.Sprintf("The image is for a post with the following caption: '%s'. Generate Alt Text for the image.", caption)
	text, err := g.generate(ctx, altTextSystemInstruction, prompt, genai.Ptr[float32](0.5))
	if err != nil || text == "" {
		logutil.Errorf("alt text generation failed, using fallback: %v", err)
		return altTextFallbackError
	}

	return ClampAltText(text)
}

// Article generates the long-form LinkedIn article.
func (g *Generator) Article(ctx context.Context) (string, error) {
	if g.client == nil {
		return "", autopost.GenerationUnavailableError{Kind: "article", Err: errors.New("GEMINI_API_KEY is not set")}
	}

	text, err := g.generate(ctx, articleSystemInstruction,
		"Generate today's real-world digital marketing tips and tricks article.", nil)
	if err != nil {
		return "", autopost.GenerationUnavailableError{Kind: "article", Err: err}
	}
	if text == "" {
		return "", autopost.GenerationUnavailableError{Kind: "article", Err: errors.New("empty response")}
	}

	return ClampArticle(text), nil
}

// TweetText generates a tweet on a randomly chosen topic. The result always
// satisfies the length and identity-token constraints.
func (g *Generator) TweetText(ctx context.Context) (string, error) {
	if g.client == nil {
		return "", autopost.GenerationUnavailableError{Kind: "tweet", Err: errors.New("GEMINI_API_KEY is not set")}
	}

	topic := tweetTopics[g.pick(len(tweetTopics))]
	logutil.Debugf("generating tweet: topic=%q", topic)

	text, err := g.generate(ctx, tweetSystemInstruction,
		fmt.Sprintf("Generate a tweet on the topic: %s", topic), genai.Ptr[float32](0.8))
	if err != nil {
		return "", autopost.GenerationUnavailableError{Kind: "tweet", Err: err}
	}
	if text == "" {
		return "", autopost.GenerationUnavailableError{Kind: "tweet", Err: errors.New("empty response")}
	}

	return ConformTweet(text), nil
}

func (g *Generator) generate(ctx context.Context, system, prompt string, temperature *float32) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
