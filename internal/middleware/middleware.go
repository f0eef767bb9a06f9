package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"weddingTasks/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if requestId == "" {
			requestId = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestId)

		ctx := context.WithValue(r.Context(), RequestIdKey, requestId)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

type loggingWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (lw *loggingWriter) WriteHeader(code int) {
	if !lw.wroteHeader {
		lw.status = code
		lw.wroteHeader = true
		lw.ResponseWriter.WriteHeader(code)
	}
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if !lw.wroteHeader {
		lw.WriteHeader(http.StatusOK)
	}

	n, err := lw.ResponseWriter.Write(b)
	lw.size += n
	return n, err
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestId := GetRequestID(r.Context())

		logger.Info(
			"HTTP_IN: Начало запроса",
			zap.String("request_id", requestId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("client_ip", r.RemoteAddr),
		)

		lw := &loggingWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		next.ServeHTTP(lw, r)

		logLevel := zap.InfoLevel
		if lw.status >= 400 && lw.status < 500 {
			logLevel = zap.WarnLevel
		} else if lw.status >= 500 {
			logLevel = zap.ErrorLevel
		}
		logger.Log(
			logLevel,
			"HTTP_OUT: Завершение запроса",
			zap.String("request_id", requestId),
			zap.Int("status", lw.status),
			zap.Int("bytes_written", lw.size),
			zap.Duration("ms", time.Since(start)),
		)
	})
}

// timeoutWriter буферизует ответ обработчика. Горутина обработчика пишет
// только сюда; реального ResponseWriter касается исключительно внешняя
// горутина - либо переносом буфера после завершения, либо записью 504.
// Две горутины никогда не пишут в один writer.
type timeoutWriter struct {
	header      http.Header
	buf         bytes.Buffer
	status      int
	wroteHeader bool
}

func newTimeoutWriter() *timeoutWriter {
	return &timeoutWriter{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	if tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.status = code
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.buf.Write(b)
}

// Timeout обрезает обработку по дедлайну контекста; зависший обработчик
// получает отменённый контекст, клиент - 504. Опоздавший ответ обработчика
// остаётся в буфере и никуда не уходит.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			done := make(chan struct{})
			tw := newTimeoutWriter()

			go func() {
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
				// close(done) упорядочивает записи обработчика до чтения буфера
				dst := w.Header()
				for key, values := range tw.header {
					dst[key] = values
				}
				w.WriteHeader(tw.status)
				w.Write(tw.buf.Bytes())
			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					return
				}
				logger.Warn(
					"HTTP: таймаут запроса",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("timeout", timeout),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				json.NewEncoder(w).Encode(map[string]any{
					"error":      "request timeout",
					"request_id": GetRequestID(r.Context()),
				})
			}
		})
	}
}

type clientInfo struct {
	count   int
	resetAt time.Time
}

func RateLimit(rpm int) func(http.Handler) http.Handler {
	clients := make(map[string]*clientInfo)
	var mtx sync.Mutex
	window := time.Minute

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIp(r)
			now := time.Now()

			mtx.Lock()

			info, exists := clients[ip]

			if !exists {
				info = &clientInfo{
					count:   1,
					resetAt: now.Add(window),
				}
				clients[ip] = info
			} else if now.After(info.resetAt) {
				info.count = 1
				info.resetAt = now.Add(window)
			} else {
				if info.count >= rpm {
					mtx.Unlock()

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusTooManyRequests)

					json.NewEncoder(w).Encode(map[string]any{
						"error":       "rate_limit_exceeded",
						"message":     "Слишком много запросов. Попробуйте позже.",
						"retry_after": int(info.resetAt.Sub(now).Seconds()),
						"request_id":  GetRequestID(r.Context()),
					})
					return
				}

				info.count++
			}

			remaining := rpm - info.count
			resetUnix := info.resetAt.Unix()

			mtx.Unlock()

			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix, 10))

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
