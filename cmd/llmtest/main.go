// llmtest is a manual probe for the symptom classifier: it runs a handful of
// representative complaints through the configured provider chain and prints
// which path (llm, cache, fallback) answered each one.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/careloop/frontdesk/internal/triage"
	"github.com/careloop/frontdesk/pkg/logging"
)

var complaints = []string{
	"chest pain and shortness of breath",
	"my knee hurts when climbing stairs",
	"itchy rash on both arms",
	"my 4 year old has a fever",
	"recurring ear infections",
	"general weakness and fatigue",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger := logging.New("debug")

	var llm triage.LLMClient
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		client, err := triage.NewGeminiLLMClient(ctx, key, os.Getenv("GEMINI_MODEL_ID"))
		if err != nil {
			log.Fatalf("create gemini client: %v", err)
		}
		llm = client
		fmt.Println("Provider: gemini")
	} else {
		fmt.Println("Provider: none (keyword fallback only)")
	}

	classifier := triage.NewClassifier(llm, nil, triage.ClassifierConfig{Timeout: 15 * time.Second}, logger)

	for _, complaint := range complaints {
		start := time.Now()
		result := classifier.Classify(ctx, complaint)
		fmt.Printf("%-45q -> %-16s (%s, %v)\n",
			complaint, result.Specialization, result.Source, time.Since(start).Round(time.Millisecond))
	}
}
