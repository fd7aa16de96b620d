package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harwoeck/liblog/contract"
	"github.com/prometheus/client_golang/prometheus"

	"azoo.dev/utils/ttlcache"
)

func main() {
	config := &ttlcache.Config{TTL: 10 * time.Second}
	if len(os.Args) > 1 {
		var err error
		config, err = ttlcache.LoadConfig(os.Args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	cache, err := ttlcache.New(config, contract.MustNewStd())
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	for _, kind := range []ttlcache.EventKind{ttlcache.EventPut, ttlcache.EventHit, ttlcache.EventMiss, ttlcache.EventDel, ttlcache.EventDrop} {
		cache.Subscribe(kind, printEvent)
	}
	reg := prometheus.NewRegistry()
	ttlcache.NewMetrics("example", reg).Observe(cache)

	fmt.Println("commands: put <key> <value> [ttl], get <key>, del <key>, size, exact, keys, clear, stats, quit")

	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch cmd := args[0]; {
		case cmd == "put" && len(args) == 3:
			cache.Put(args[1], args[2])
		case cmd == "put" && len(args) == 4:
			cache.PutTTL(args[1], args[2], ttlcache.CoerceTTL(args[3]))
		case cmd == "get" && len(args) == 2:
			if v, ok := cache.Get(args[1]); ok {
				fmt.Printf("%s = %v\n", args[1], v)
			}
		case cmd == "del" && len(args) == 2:
			cache.Delete(args[1])
		case cmd == "size":
			fmt.Println(cache.Size())
		case cmd == "exact":
			fmt.Println(cache.ExactSize())
		case cmd == "keys":
			fmt.Println(strings.Join(cache.Keys(), " "))
		case cmd == "clear":
			cache.Clear()
		case cmd == "stats":
			printStats(reg)
		case cmd == "quit":
			return
		default:
			fmt.Printf("unknown command: %q\n", strings.TrimSpace(line))
		}
	}
}

func printEvent(ev ttlcache.Event) {
	switch ev.Kind {
	case ttlcache.EventMiss:
		fmt.Printf("[%s] %s\n", ev.Kind, ev.Key)
	case ttlcache.EventPut, ttlcache.EventDrop:
		fmt.Printf("[%s] %s = %v (ttl %s)\n", ev.Kind, ev.Key, ev.Value, ev.TTL)
	default:
		fmt.Printf("[%s] %s = %v\n", ev.Kind, ev.Key, ev.Value)
	}
}

func printStats(reg prometheus.Gatherer) {
	families, err := reg.Gather()
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("%s %v\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Printf("%s %v\n", mf.GetName(), m.GetGauge().GetValue())
			}
		}
	}
}
