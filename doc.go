// Package fasttranslator turns free-text translation requests into
// deduplicated, cached, rate-limited calls to a generative-language
// translation backend.
//
// It keeps an interactive caller responsive under bursty usage (a user
// retyping or resubmitting similar phrases) by coalescing identical
// in-flight requests, answering repeats from a frequency-ranked bounded
// cache, and pacing outbound calls to respect provider rate limits.
//
// Basic usage:
//
//	import (
//	    "context"
//	    fasttranslator "github.com/futurediffusion/fast-translator"
//	    "github.com/futurediffusion/fast-translator/cache"
//	    "github.com/futurediffusion/fast-translator/provider"
//	)
//
//	func main() {
//	    client := provider.NewGeminiClient(provider.GeminiConfig{
//	        APIKey: os.Getenv("GEMINI_API_KEY"),
//	    })
//
//	    store := cache.NewFileStore(filepath.Join(dir, "cache.json"))
//	    d := fasttranslator.New(client, fasttranslator.Config{},
//	        fasttranslator.WithCache(cache.NewFrequencyCache(0, cache.WithStore(store))),
//	        fasttranslator.WithDetector(fasttranslator.NewLinguaDetector()),
//	    )
//	    defer d.Close()
//
//	    result, err := d.Translate(context.Background(), fasttranslator.Request{
//	        Text: "Hola, ¿cómo estás?",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result) // Hello, how are you?
//	}
package fasttranslator
