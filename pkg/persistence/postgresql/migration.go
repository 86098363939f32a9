package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE segments (
				id UUID PRIMARY KEY,
				user_id BIGINT NOT NULL,
				name VARCHAR(255) NOT NULL,
				s3_url TEXT NOT NULL DEFAULT '',
				s3_key TEXT NOT NULL DEFAULT '',
				file_name VARCHAR(255) NOT NULL DEFAULT '',
				file_size BIGINT NOT NULL DEFAULT 0,
				total_records INT NOT NULL DEFAULT 0,
				status VARCHAR(50) NOT NULL DEFAULT 'ready',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_segments_user_id ON segments(user_id);

			CREATE TABLE campaigns (
				id UUID PRIMARY KEY,
				user_id BIGINT NOT NULL,
				segment_id UUID NOT NULL REFERENCES segments(id),
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(20) NOT NULL CHECK (status IN ('draft', 'scheduled', 'running', 'paused', 'completed', 'failed')),
				start_date TIMESTAMP WITH TIME ZONE NOT NULL,
				end_date TIMESTAMP WITH TIME ZONE NOT NULL,
				total_users_targeted INT NOT NULL DEFAULT 0,
				total_sent INT NOT NULL DEFAULT 0,
				total_failed INT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_campaigns_user_id ON campaigns(user_id);
			CREATE INDEX idx_campaigns_status ON campaigns(status);
		`,
		2: `
			-- Migration 2: flow graph and n8n deployment tracking
			ALTER TABLE campaigns
				ADD COLUMN flow_data JSONB,
				ADD COLUMN n8n_workflow_id VARCHAR(255) NOT NULL DEFAULT '',
				ADD COLUMN n8n_workflow_url TEXT NOT NULL DEFAULT '',
				ADD COLUMN flow_version INT NOT NULL DEFAULT 0,
				ADD COLUMN flow_updated_at TIMESTAMP WITH TIME ZONE,
				ADD COLUMN execution_status VARCHAR(20) NOT NULL DEFAULT '',
				ADD COLUMN execution_count INT NOT NULL DEFAULT 0,
				ADD COLUMN last_executed_at TIMESTAMP WITH TIME ZONE;

			CREATE INDEX idx_campaigns_n8n_workflow_id ON campaigns(n8n_workflow_id);
		`,
	}
}
