package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// successIdx возвращается gracefulClose, если все ресурсы закрыты
const successIdx = -1

// Func — функция закрытия ресурса.
type Func func(ctx context.Context) error

type namedFunc struct {
	name string
	fn   Func
}

// Closer закрывает зарегистрированные ресурсы в порядке LIFO.
type Closer struct {
	funcs         []namedFunc
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

// NewCloser создаёт Closer. forcedTimeout — время на принудительное закрытие
// оставшихся ресурсов, если контекст Close истёк раньше.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует функцию закрытия под именем ресурса (для сообщений об ошибках).
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, namedFunc{name: name, fn: f})
}

// AddSimple регистрирует функцию закрытия без контекста и ошибки.
func (c *Closer) AddSimple(name string, f func()) {
	c.Add(name, func(context.Context) error {
		f()
		return nil
	})
}

// Close вызывает функции закрытия один раз. Если ctx отменяется до завершения,
// оставшиеся функции запускаются параллельно с собственным таймаутом.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.mu.Unlock()

		stopIdx, errs := c.gracefulClose(ctx, funcs)
		if stopIdx == successIdx {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		errs = append(errs, c.forcedClose(funcs[:stopIdx+1])...)
		err = fmt.Errorf(
			"shutdown interrupted after %d/%d funcs:\n%s",
			len(funcs)-1-stopIdx,
			len(funcs),
			strings.Join(errs, "\n"),
		)
	})

	return err
}

func (c *Closer) gracefulClose(ctx context.Context, funcs []namedFunc) (int, []string) {
	var errs []string
	for i := len(funcs) - 1; i >= 0; i-- {
		f := funcs[i]
		done := make(chan error, 1)

		go func() {
			done <- f.fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %s: %v", f.name, err))
			}
		case <-ctx.Done():
			return i, errs
		}
	}

	return successIdx, errs
}

func (c *Closer) forcedClose(funcs []namedFunc) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, f := range funcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", f.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
