package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// -------------------- 进程监控 --------------------

// runtimeSample 一次进程级采样
// 只依赖 runtime 统计，跨平台可用
type runtimeSample struct {
	at         time.Time
	goroutines int
	heapAlloc  uint64
	heapSys    uint64
	numGC      uint32
}

type monitor struct {
	mu       sync.Mutex
	samples  []runtimeSample
	interval time.Duration
	stop     chan struct{}
}

func newMonitor(interval time.Duration) *monitor {
	return &monitor{
		samples:  make([]runtimeSample, 0, 256),
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (m *monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s := sample()
				m.mu.Lock()
				m.samples = append(m.samples, s)
				m.mu.Unlock()
				fmt.Printf("[%s] goroutines: %d | 堆: %.1fMB/%.1fMB | GC次数: %d\n",
					s.at.Format("15:04:05"), s.goroutines,
					mb(s.heapAlloc), mb(s.heapSys), s.numGC)
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *monitor) Stop() { close(m.stop) }

func (m *monitor) Report() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.samples) == 0 {
		fmt.Println("没有监控数据")
		return
	}
	first, last := m.samples[0], m.samples[len(m.samples)-1]
	maxGo, peakHeap := 0, uint64(0)
	for _, s := range m.samples {
		if s.goroutines > maxGo {
			maxGo = s.goroutines
		}
		if s.heapAlloc > peakHeap {
			peakHeap = s.heapAlloc
		}
	}
	fmt.Println("\n=== 进程监控报告 ===")
	fmt.Printf("持续: %v 采样: %d次\n", last.at.Sub(first.at), len(m.samples))
	fmt.Printf("峰值goroutine: %d 峰值堆: %.1fMB GC增量: %d\n",
		maxGo, mb(peakHeap), last.numGC-first.numGC)
}

func sample() runtimeSample {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return runtimeSample{
		at:         time.Now(),
		goroutines: runtime.NumGoroutine(),
		heapAlloc:  ms.HeapAlloc,
		heapSys:    ms.HeapSys,
		numGC:      ms.NumGC,
	}
}

func mb(b uint64) float64 { return float64(b) / 1024 / 1024 }

// -------------------- HTTP 并发压测 --------------------

type benchStats struct {
	mu       sync.Mutex
	total    int
	success  int
	failed   int
	sum      time.Duration
	max, min time.Duration
}

func (s *benchStats) Add(success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if !success {
		s.failed++
		return
	}
	s.success++
	s.sum += latency
	if latency > s.max {
		s.max = latency
	}
	if s.min == 0 || latency < s.min {
		s.min = latency
	}
}

func (s *benchStats) Report(took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Println("\n=== HTTP API测试结果 ===")
	fmt.Printf("耗时: %v\n", took)
	fmt.Printf("总请求: %d 成功: %d 失败: %d\n", s.total, s.success, s.failed)
	if s.success > 0 {
		fmt.Printf("延迟 平均: %v 最大: %v 最小: %v\n", s.sum/time.Duration(s.success), s.max, s.min)
	}
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(s.success)/took.Seconds())
	}
	if s.total > 0 {
		fmt.Printf("成功率: %.2f%%\n", float64(s.success)/float64(s.total)*100)
	}
}

var httpClient = &http.Client{Timeout: 8 * time.Second}

// openSession 建立匿名会话，返回访问令牌
// 压测走匿名入口，不在测试库里堆积注册账号
func openSession(base string) (string, error) {
	resp, err := httpClient.Post(base+"/api/v1/auth/anonymous", "application/json", bytes.NewReader(nil))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Code int `json:"code"`
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Code != 0 || body.Data.AccessToken == "" {
		return "", fmt.Errorf("匿名会话建立失败: code=%d", body.Code)
	}
	return body.Data.AccessToken, nil
}

func hit(url, token string, stats *benchStats) {
	start := time.Now()
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		stats.Add(false, 0)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		stats.Add(false, lat)
		return
	}
	defer resp.Body.Close()
	stats.Add(resp.StatusCode == 200, lat)
}

func runHTTPBench(base string, concurrency, perGoroutine int) {
	fmt.Println("\n=== HTTP API并发测试开始 ===")
	fmt.Printf("目标: %s 并发: %d 每协程请求: %d\n", base, concurrency, perGoroutine)

	stats := &benchStats{}
	var wg sync.WaitGroup
	start := time.Now()

	// 无需认证的公开端点
	public := []string{"/", "/health"}
	// 需要认证的业务端点
	authed := []string{
		"/api/v1/profiles/me",
		"/api/v1/friends",
		"/api/v1/friends/requests",
		"/api/v1/brands/approved",
	}

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			// 每个压测协程各自建立一个匿名会话
			token, err := openSession(base)
			if err != nil {
				fmt.Printf("协程%d 会话建立失败: %v\n", id, err)
				for j := 0; j < perGoroutine; j++ {
					stats.Add(false, 0)
				}
				return
			}

			for j := 0; j < perGoroutine; j++ {
				if (id+j)%3 == 0 {
					hit(base+public[(id+j)%len(public)], "", stats)
				} else {
					hit(base+authed[(id+j)%len(authed)], token, stats)
				}
				time.Sleep(5 * time.Millisecond)
			}
		}(i)
	}

	wg.Wait()
	stats.Report(time.Since(start))
}

// -------------------- 入口 --------------------

func main() {
	concurrency := 5
	perGoroutine := 10
	monitorSeconds := 20

	if len(os.Args) > 1 {
		if val, err := strconv.Atoi(os.Args[1]); err == nil {
			concurrency = val
		}
	}
	if len(os.Args) > 2 {
		if val, err := strconv.Atoi(os.Args[2]); err == nil {
			perGoroutine = val
		}
	}
	if len(os.Args) > 3 {
		if val, err := strconv.Atoi(os.Args[3]); err == nil {
			monitorSeconds = val
		}
	}

	baseURL := "http://localhost:8080"
	if v := os.Getenv("BENCH_BASE_URL"); v != "" {
		baseURL = v
	}

	fmt.Println("=== 社交系统并发与监控测试 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("目标: %s 并发: %d 每协程请求: %d 监控: %ds\n", baseURL, concurrency, perGoroutine, monitorSeconds)

	mon := newMonitor(1 * time.Second)
	mon.Start()

	runHTTPBench(baseURL, concurrency, perGoroutine)

	// 压测结束后继续观察一段时间，看连接与goroutine是否回落
	time.Sleep(time.Duration(monitorSeconds) * time.Second)
	mon.Stop()
	mon.Report()

	fmt.Println("\n=== 测试完成 ===")
}
