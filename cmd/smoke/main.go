package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

// SmokeClient drives a running vibeforge server end to end. It needs a real
// GEMINI_API_KEY on the server side, so it lives here and not in go test.
type SmokeClient struct {
	baseURL string
	user    string
	client  *http.Client
}

func NewSmokeClient(baseURL, user string) *SmokeClient {
	return &SmokeClient{
		baseURL: baseURL,
		user:    user,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	testType := flag.String("test", "all", "Test type: all, health, setup, journey")
	user := flag.String("user", "smoke-tester", "User name for the journey test")
	bio := flag.String("bio", "I collect vinyl, hike on weekends, and hate cluttered websites.", "Bio for calibration")
	flag.Parse()

	client := NewSmokeClient(*baseURL, *user)

	printHeader("Vibeforge - Smoke Suite")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, *baseURL, colorReset)

	switch *testType {
	case "all":
		client.runAllTests(*bio)
	case "health":
		client.testHealth()
	case "setup":
		client.testSetup()
	case "journey":
		client.testJourney(*bio)
	default:
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, setup, journey")
		os.Exit(1)
	}
}

func (sc *SmokeClient) runAllTests(bio string) {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", sc.testHealth},
		{"Setup Check", sc.testSetup},
		{"Full Journey", func() bool { return sc.testJourney(bio) }},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Smoke Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func (sc *SmokeClient) testHealth() bool {
	printTestHeader("Testing Health Endpoint")

	url := fmt.Sprintf("%s/health", sc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := sc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}
	if string(body) != "OK" {
		printError(fmt.Sprintf("Expected body 'OK', got '%s'", string(body)))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (sc *SmokeClient) testSetup() bool {
	printTestHeader("Testing Setup Endpoint")

	url := fmt.Sprintf("%s/api/setup", sc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := sc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var setup struct {
		Configured bool `json:"configured"`
	}
	if err := json.Unmarshal(body, &setup); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if !setup.Configured {
		printError("Server has no GEMINI_API_KEY configured; journey test will fail")
		return false
	}

	printSuccess("Server is configured for generation")
	return true
}

func (sc *SmokeClient) testJourney(bio string) bool {
	printTestHeader("Testing Calibrate -> Confirm -> Complete Journey")

	if !sc.post(fmt.Sprintf("/api/users/%s/calibrate", sc.user), map[string]any{"bio": bio}, http.StatusOK) {
		return false
	}
	printSuccess("Calibration produced a profile")

	if !sc.post(fmt.Sprintf("/api/users/%s/confirm", sc.user), nil, http.StatusAccepted) {
		return false
	}

	// Poll until the cycle lands on COMPLETE or falls back to IDLE.
	deadline := time.Now().Add(5 * time.Minute)
	for time.Now().Before(deadline) {
		stage, lastFailure, ok := sc.fetchStage()
		if !ok {
			return false
		}
		fmt.Printf("stage: %s\n", stage)
		switch stage {
		case "COMPLETE":
			printSuccess("Cycle completed")
			return sc.testChat()
		case "IDLE":
			if lastFailure != "" {
				printError(fmt.Sprintf("Cycle aborted: %s", lastFailure))
				return false
			}
		}
		time.Sleep(3 * time.Second)
	}

	printError("Cycle did not complete within 5 minutes")
	return false
}

func (sc *SmokeClient) testChat() bool {
	if !sc.post(fmt.Sprintf("/api/users/%s/chat", sc.user), map[string]any{"message": "what is this page selling me?"}, http.StatusOK) {
		return false
	}
	printSuccess("Chat produced a reply")
	return true
}

func (sc *SmokeClient) fetchStage() (stage, lastFailure string, ok bool) {
	url := fmt.Sprintf("%s/api/users/%s/state", sc.baseURL, sc.user)
	resp, err := sc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("State request failed: %v", err))
		return "", "", false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var state struct {
		Stage       string `json:"stage"`
		LastFailure *struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"lastFailure"`
	}
	if err := json.Unmarshal(body, &state); err != nil {
		printError(fmt.Sprintf("Invalid state JSON: %v", err))
		return "", "", false
	}
	if state.LastFailure != nil {
		lastFailure = fmt.Sprintf("%s: %s", state.LastFailure.Kind, state.LastFailure.Message)
	}
	return state.Stage, lastFailure, true
}

func (sc *SmokeClient) post(path string, payload map[string]any, wantStatus int) bool {
	url := sc.baseURL + path
	fmt.Printf("POST %s\n", url)

	var body io.Reader = http.NoBody
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	resp, err := sc.client.Post(url, "application/json", body)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		printError(fmt.Sprintf("Expected status %d, got %d", wantStatus, resp.StatusCode))
		fmt.Printf("Response: %s\n", string(respBody))
		return false
	}
	printJSON(respBody)
	return true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

func printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Printf("%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
