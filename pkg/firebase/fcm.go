package firebase

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/spinspot/server/internal/logger"
	"google.golang.org/api/option"
)

// FCMService wraps the Firebase Cloud Messaging client. Initialization is
// best-effort: when credentials are absent the service stays disabled and
// every send becomes a no-op, so push delivery never blocks startup.
type FCMService struct {
	client *messaging.Client
	mu     sync.RWMutex
}

var (
	fcmService *FCMService
	fcmOnce    sync.Once
)

// GetFCMService returns the process-wide FCM service instance.
func GetFCMService() *FCMService {
	fcmOnce.Do(func() {
		fcmService = &FCMService{}
		fcmService.initialize()
	})
	return fcmService
}

func (s *FCMService) initialize() {
	ctx := context.Background()
	log := logger.GetLogger("firebase")

	// Inline credentials (K8s secret) win over a mounted file.
	credJSON := os.Getenv("FIREBASE_CREDENTIALS")
	var app *firebase.App
	var err error

	if credJSON != "" {
		var credMap map[string]interface{}
		if err := json.Unmarshal([]byte(credJSON), &credMap); err != nil {
			log.Warnf("invalid JSON in FIREBASE_CREDENTIALS: %v", err)
			return
		}
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
		if credPath == "" {
			credPath = "secrets/firebase-service-account.json"
		}
		if _, statErr := os.Stat(credPath); os.IsNotExist(statErr) {
			log.Infof("credentials file not found, push disabled: %s", credPath)
			return
		}
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(credPath))
	}

	if err != nil {
		log.Warnf("failed to initialize app: %v", err)
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warnf("failed to get messaging client: %v", err)
		return
	}

	s.client = client
	log.Info("push messaging initialized")
}

// IsInitialized reports whether a messaging client is available.
func (s *FCMService) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// SendPushResult summarizes a multicast push.
type SendPushResult struct {
	SuccessCount int
	FailureCount int
	FailedTokens []string
}

// SendPush delivers one notification to a single device. A stale token is
// reported as a clean failure, not an error.
func (s *FCMService) SendPush(ctx context.Context, token, title, body string, data map[string]string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logger.GetLogger("firebase")
	if s.client == nil {
		return false, nil
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		if messaging.IsUnregistered(err) {
			return false, nil
		}
		log.Warnf("push send failed: %v", err)
		return false, err
	}
	return true, nil
}

// SendPushMultiple delivers one notification to many devices and reports the
// tokens that failed, so callers can deactivate them.
func (s *FCMService) SendPushMultiple(ctx context.Context, tokens []string, title, body string, data map[string]string) *SendPushResult {
	result := &SendPushResult{FailedTokens: make([]string, 0)}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.client == nil {
		result.FailureCount = len(tokens)
		result.FailedTokens = tokens
		return result
	}
	if len(tokens) == 0 {
		return result
	}

	message := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:   data,
		Tokens: tokens,
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		logger.GetLogger("firebase").Warnf("multicast send failed: %v", err)
		result.FailureCount = len(tokens)
		result.FailedTokens = tokens
		return result
	}

	result.SuccessCount = response.SuccessCount
	result.FailureCount = response.FailureCount
	for idx, resp := range response.Responses {
		if !resp.Success {
			result.FailedTokens = append(result.FailedTokens, tokens[idx])
		}
	}
	return result
}
