package http

import (
	"encoding/json"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func registerLogging(e *echo.Echo) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if id, ok := c.Get(contextUserKey).(string); ok && id != "" {
				userID = id
			}

			payload := struct {
				Time      string `json:"time"`
				UserUUID  string `json:"user_uuid"`
				Method    string `json:"method"`
				URI       string `json:"uri"`
				Status    int    `json:"status"`
				LatencyMS int64  `json:"latency_ms"`
				Error     string `json:"error,omitempty"`
			}{
				Time:      v.StartTime.Format(time.RFC3339),
				UserUUID:  userID,
				Method:    v.Method,
				URI:       v.URI,
				Status:    v.Status,
				LatencyMS: v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				payload.Error = v.Error.Error()
			}

			buf, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			log.Println(string(buf))
			return nil
		},
	}))
}
