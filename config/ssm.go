package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterFetcher is the subset of the SSM client used to read secrets
type ParameterFetcher interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM overlays parameters stored under SSM_PARAMETER_PATH onto c. A parameter named
// /blog/prod/JWT_SECRET becomes c["JWT_SECRET"]. Values already present in the environment win.
func LoadSSM(ctx context.Context, c map[string]string) error {
	prefix := GetString(c, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(GetString(c, "AWS_REGION", "us-east-1")))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	n, err := overlayParameters(ctx, ssm.NewFromConfig(awsCfg), prefix, c)
	if err != nil {
		return err
	}
	log.Info().Str("path", prefix).Int("parameters", n).Msg("Loaded configuration from SSM")
	return nil
}

func overlayParameters(ctx context.Context, client ParameterFetcher, prefix string, c map[string]string) (int, error) {
	loaded := 0
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return loaded, fmt.Errorf("get parameters under %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			key := strings.ToUpper(path.Base(aws.ToString(p.Name)))
			if _, exists := c[key]; exists && c[key] != "" {
				continue
			}
			c[key] = aws.ToString(p.Value)
			loaded++
		}
	}
	return loaded, nil
}
